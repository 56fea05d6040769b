package main

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/employee-api/internal/auth"
	"github.com/vyrodovalexey/employee-api/internal/config"
	"github.com/vyrodovalexey/employee-api/internal/events"
	"github.com/vyrodovalexey/employee-api/internal/store"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"invalid level defaults to info", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			logger, err := initLogger(tt.level)

			// Assert
			if err != nil {
				t.Fatalf("initLogger() error = %v", err)
			}
			if logger == nil {
				t.Error("initLogger() returned nil logger")
			}
		})
	}
}

func TestCreateAuthenticator(t *testing.T) {
	tests := []struct {
		name       string
		cfg        *config.Config
		wantNil    bool
		wantMethod auth.AuthMethod
		wantErr    bool
	}{
		{
			name:    "none",
			cfg:     &config.Config{AuthMode: "none"},
			wantNil: true,
		},
		{
			name:    "empty mode",
			cfg:     &config.Config{},
			wantNil: true,
		},
		{
			name:       "basic",
			cfg:        &config.Config{AuthMode: "basic", BasicAuthUsers: "admin:$2a$10$abcdefghijklmnopqrstuu"},
			wantMethod: auth.AuthMethodBasic,
		},
		{
			name:       "apikey",
			cfg:        &config.Config{AuthMode: "apikey", APIKeys: "key1:service1"},
			wantMethod: auth.AuthMethodAPIKey,
		},
		{
			name: "multi",
			cfg: &config.Config{
				AuthMode:       "multi",
				BasicAuthUsers: "admin:$2a$10$abcdefghijklmnopqrstuu",
				APIKeys:        "key1:service1",
			},
			wantMethod: auth.AuthMethodMulti,
		},
		{
			name:    "multi without credentials",
			cfg:     &config.Config{AuthMode: "multi"},
			wantErr: true,
		},
		{
			name:    "invalid api keys",
			cfg:     &config.Config{AuthMode: "apikey", APIKeys: "no-separator"},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			cfg:     &config.Config{AuthMode: "oidc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			authenticator, err := createAuthenticator(tt.cfg, zap.NewNop())

			// Assert
			if tt.wantErr {
				if err == nil {
					t.Error("createAuthenticator() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("createAuthenticator() error = %v", err)
			}
			if tt.wantNil {
				if authenticator != nil {
					t.Errorf("createAuthenticator() = %v, want nil", authenticator)
				}
				return
			}
			if authenticator == nil {
				t.Fatal("createAuthenticator() returned nil")
			}
			if authenticator.Method() != tt.wantMethod {
				t.Errorf("Method() = %q, want %q", authenticator.Method(), tt.wantMethod)
			}
		})
	}
}

func TestBuildStore_Memory(t *testing.T) {
	tests := []struct {
		name      string
		seed      bool
		wantCount int
	}{
		{name: "empty", seed: false, wantCount: 0},
		{name: "seeded", seed: true, wantCount: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := config.Default()
			cfg.SeedDemoData = tt.seed
			var cleanup closers
			defer cleanup.run()

			// Act
			s, err := buildStore(context.Background(), cfg, zap.NewNop(), &cleanup)

			// Assert
			if err != nil {
				t.Fatalf("buildStore() error = %v", err)
			}
			if _, ok := s.(*store.InstrumentedStore); !ok {
				t.Errorf("buildStore() = %T, want *store.InstrumentedStore", s)
			}
			employees, err := s.FindAll(context.Background())
			if err != nil {
				t.Fatalf("FindAll() error = %v", err)
			}
			if len(employees) != tt.wantCount {
				t.Errorf("len(FindAll()) = %d, want %d", len(employees), tt.wantCount)
			}
		})
	}
}

func TestBuildStore_UnknownDriver(t *testing.T) {
	// Arrange
	cfg := config.Default()
	cfg.StoreDriver = "cassandra"
	var cleanup closers

	// Act
	_, err := buildStore(context.Background(), cfg, zap.NewNop(), &cleanup)

	// Assert
	if err == nil {
		t.Error("buildStore() expected error, got nil")
	}
}

func TestBuildPublisher_WithoutKafka(t *testing.T) {
	// Arrange
	cfg := config.Default()
	hub := events.NewHub()
	defer hub.Close()
	var cleanup closers

	// Act
	publisher, err := buildPublisher(cfg, hub, zap.NewNop(), &cleanup)

	// Assert
	if err != nil {
		t.Fatalf("buildPublisher() error = %v", err)
	}
	if publisher != events.Publisher(hub) {
		t.Errorf("buildPublisher() = %T, want the hub", publisher)
	}
	if len(cleanup) != 0 {
		t.Errorf("cleanup registered %d closers, want 0", len(cleanup))
	}
}

func TestClosers_RunInReverseOrder(t *testing.T) {
	// Arrange
	var (
		cleanup closers
		order   []int
	)
	for i := 1; i <= 3; i++ {
		i := i
		cleanup.add(func() { order = append(order, i) })
	}

	// Act
	cleanup.run()

	// Assert
	if want := []int{3, 2, 1}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}
