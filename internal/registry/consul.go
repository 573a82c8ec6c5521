// Package registry registers the service with Consul when CONSUL_ADDR is
// set. Without it the service runs standalone.
package registry

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/hashicorp/consul/api"
)

// Register announces the service to Consul and returns a deregister func.
func Register(port string) (func(), error) {
	addr := os.Getenv("CONSUL_ADDR")
	if addr == "" {
		return func() {}, nil
	}

	cfg := api.DefaultConfig()
	cfg.Address = addr
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}

	name := os.Getenv("SERVICE_NAME")
	if name == "" {
		name = "foodsource"
	}
	host := os.Getenv("SERVICE_HOST")
	if host == "" {
		host = "localhost"
	}
	p, _ := strconv.Atoi(port)

	id := fmt.Sprintf("%s-%s", name, port)
	reg := &api.AgentServiceRegistration{
		ID:      id,
		Name:    name,
		Address: host,
		Port:    p,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%s/health", host, port),
			Interval:                       "10s",
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
	if err := client.Agent().ServiceRegister(reg); err != nil {
		return nil, fmt.Errorf("consul register: %w", err)
	}
	log.Printf("Registered with Consul as %s", id)

	return func() {
		if err := client.Agent().ServiceDeregister(id); err != nil {
			log.Printf("consul deregister failed: %v", err)
		}
	}, nil
}
