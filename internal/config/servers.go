package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
)

// ServersRegistry holds named server bookmarks
type ServersRegistry struct {
	Servers       []Server `json:"servers"`
	DefaultServer string   `json:"defaultServer"`
}

// Server is a bookmarked chat server
type Server struct {
	Name      string `json:"name"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Transport string `json:"transport,omitempty"`
}

var (
	// ErrServerNotFound is returned when a server doesn't exist in the registry
	ErrServerNotFound = errors.New("server not found")
	// ErrDuplicateServer is returned when trying to add a server that already exists
	ErrDuplicateServer = errors.New("server already exists")
	// ErrEmptyName is returned when the server name is empty
	ErrEmptyName = errors.New("server name cannot be empty")
	// ErrInvalidAddr is returned when the address is not host:port
	ErrInvalidAddr = errors.New("address must be host:port")
)

// Addr returns host:port
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ParseServer builds a bookmark from a host:port address
func ParseServer(name, addr, transport string) (Server, error) {
	if name == "" {
		return Server{}, ErrEmptyName
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return Server{}, fmt.Errorf("%q: %w", addr, ErrInvalidAddr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return Server{}, fmt.Errorf("%q: %w", addr, ErrInvalidAddr)
	}
	return Server{Name: name, Host: host, Port: port, Transport: transport}, nil
}

// LoadServersRegistry loads the servers registry from disk
// Returns an empty registry if the file doesn't exist
func LoadServersRegistry() (*ServersRegistry, error) {
	path, err := registryPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &ServersRegistry{Servers: []Server{}}, nil
	}
	if err != nil {
		return nil, err
	}

	var registry ServersRegistry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &registry, nil
}

// SaveServersRegistry saves the servers registry to disk
func SaveServersRegistry(reg *ServersRegistry) error {
	path, err := registryPath()
	if err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Add adds a server to the registry. The first server becomes the default.
func (r *ServersRegistry) Add(s Server) error {
	if s.Name == "" {
		return ErrEmptyName
	}
	if s.Host == "" || s.Port < 1 || s.Port > 65535 {
		return ErrInvalidAddr
	}

	for _, existing := range r.Servers {
		if existing.Name == s.Name {
			return ErrDuplicateServer
		}
	}

	r.Servers = append(r.Servers, s)
	if len(r.Servers) == 1 {
		r.DefaultServer = s.Name
	}

	return nil
}

// Remove removes a server from the registry
func (r *ServersRegistry) Remove(name string) error {
	if name == "" {
		return ErrEmptyName
	}

	found := false
	for i, s := range r.Servers {
		if s.Name == name {
			r.Servers = append(r.Servers[:i], r.Servers[i+1:]...)
			found = true
			break
		}
	}

	if !found {
		return ErrServerNotFound
	}

	// Fall back to the first remaining server
	if r.DefaultServer == name {
		r.DefaultServer = ""
		if len(r.Servers) > 0 {
			r.DefaultServer = r.Servers[0].Name
		}
	}

	return nil
}

// SetDefault sets the default server
func (r *ServersRegistry) SetDefault(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if _, err := r.Get(name); err != nil {
		return err
	}

	r.DefaultServer = name
	return nil
}

// Get retrieves a server by name
func (r *ServersRegistry) Get(name string) (*Server, error) {
	for _, s := range r.Servers {
		if s.Name == name {
			return &s, nil
		}
	}
	return nil, ErrServerNotFound
}

// GetDefault returns the default server, or nil if none is set
func (r *ServersRegistry) GetDefault() *Server {
	if r.DefaultServer == "" {
		return nil
	}
	s, err := r.Get(r.DefaultServer)
	if err != nil {
		return nil
	}
	return s
}

// Apply points cfg at s
func (s Server) Apply(cfg *Config) {
	cfg.Server.Host = s.Host
	cfg.Server.Port = s.Port
	if s.Transport != "" {
		cfg.Server.Transport = s.Transport
	}
}

// registryPath is a variable holding the function that returns the path to the servers registry file
// This allows it to be overridden in tests
var registryPath = func() (string, error) {
	return filepath.Join(filepath.Dir(DefaultPath()), "servers.json"), nil
}
