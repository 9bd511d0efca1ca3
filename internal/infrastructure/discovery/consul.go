package discovery

import (
	"fmt"
	"os"

	"github.com/hashicorp/consul/api"
)

// ConsulClient registra la API de reservas en el agente local de Consul.
type ConsulClient struct {
	client *api.Client
}

// NewConsulClient crea el cliente contra la dirección del agente (host:port).
func NewConsulClient(address string) (*ConsulClient, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("crear cliente consul: %w", err)
	}
	return &ConsulClient{client: client}, nil
}

// Registration datos del servicio a registrar.
type Registration struct {
	ServiceID string
	Name      string
	Port      int
	Tags      []string
}

// Register registra el servicio con un check HTTP sobre /health.
func (c *ConsulClient) Register(reg Registration) error {
	return c.client.Agent().ServiceRegister(serviceRegistration(reg, hostname(reg.Name)))
}

// Deregister quita el servicio del agente.
func (c *ConsulClient) Deregister(serviceID string) error {
	return c.client.Agent().ServiceDeregister(serviceID)
}

func serviceRegistration(reg Registration, host string) *api.AgentServiceRegistration {
	return &api.AgentServiceRegistration{
		ID:      reg.ServiceID,
		Name:    reg.Name,
		Address: host,
		Port:    reg.Port,
		Tags:    reg.Tags,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", host, reg.Port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}
}

// hostname del contenedor para el check; si no está definido, el nombre del servicio.
func hostname(fallback string) string {
	if h := os.Getenv("HOSTNAME"); h != "" {
		return h
	}
	return fallback
}
