package discovery

import (
	"fmt"

	"github.com/brutella/dnssd"
)

// buildService creates the dnssd service and responder, adding the service
// to the responder, following the same Config/NewService/NewResponder/Add
// sequence the source used for announcing KISS-over-TCP.
func buildService(name string, port int) (dnssd.Service, dnssdResponder, error) {
	cfg := dnssd.Config{ //nolint:exhaustruct
		Name: name,
		Type: serviceType,
		Port: port,
	}

	svc, err := dnssd.NewService(cfg)
	if err != nil {
		return dnssd.Service{}, nil, fmt.Errorf("discovery: create service: %w", err)
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		return dnssd.Service{}, nil, fmt.Errorf("discovery: create responder: %w", err)
	}

	if _, err := responder.Add(svc); err != nil {
		return dnssd.Service{}, nil, fmt.Errorf("discovery: add service: %w", err)
	}

	return svc, responder, nil
}
