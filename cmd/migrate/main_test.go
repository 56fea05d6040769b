package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/vyrodovalexey/employee-api/internal/config"
)

type fakeMigrator struct {
	calls   []string
	steps   int
	err     error
	version int64
	count   int
}

func (f *fakeMigrator) MigrateUp(_ context.Context, steps int) error {
	f.calls = append(f.calls, "up")
	f.steps = steps
	return f.err
}

func (f *fakeMigrator) MigrateDown(_ context.Context, steps int) error {
	f.calls = append(f.calls, "down")
	f.steps = steps
	return f.err
}

func (f *fakeMigrator) MigrationStatus(context.Context) (int64, int, error) {
	f.calls = append(f.calls, "status")
	return f.version, f.count, nil
}

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     string
		want    options
		wantErr bool
	}{
		{
			name: "defaults with dsn flag",
			args: []string{"-dsn=postgres://localhost/employees"},
			want: options{direction: "up", dsn: "postgres://localhost/employees"},
		},
		{
			name: "dsn from environment",
			args: []string{"-direction=status"},
			env:  "postgres://env/employees",
			want: options{direction: "status", dsn: "postgres://env/employees"},
		},
		{
			name: "direction is case insensitive",
			args: []string{"-direction= DOWN ", "-steps=2", "-dsn=postgres://x"},
			want: options{direction: "down", steps: 2, dsn: "postgres://x"},
		},
		{
			name:    "missing dsn",
			args:    []string{"-direction=up"},
			wantErr: true,
		},
		{
			name:    "unsupported direction",
			args:    []string{"-direction=sideways", "-dsn=postgres://x"},
			wantErr: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"-verbose"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			t.Setenv(config.EnvPostgresDSN, tt.env)

			// Act
			got, err := parseOptions(tt.args, io.Discard)

			// Assert
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseOptions() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOptions() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseOptions() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMigrate(t *testing.T) {
	tests := []struct {
		name      string
		opts      options
		wantCalls []string
		wantOut   string
	}{
		{
			name:      "up",
			opts:      options{direction: "up", steps: 1},
			wantCalls: []string{"up", "status"},
			wantOut:   "migrate up ok: version=1 applied=1\n",
		},
		{
			name:      "down",
			opts:      options{direction: "down"},
			wantCalls: []string{"down", "status"},
			wantOut:   "migrate down ok: version=1 applied=1\n",
		},
		{
			name:      "status",
			opts:      options{direction: "status"},
			wantCalls: []string{"status"},
			wantOut:   "migration status: version=1 applied=1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			m := &fakeMigrator{version: 1, count: 1}
			var out bytes.Buffer

			// Act
			err := migrate(context.Background(), m, tt.opts, &out)

			// Assert
			if err != nil {
				t.Fatalf("migrate() error = %v", err)
			}
			if strings.Join(m.calls, ",") != strings.Join(tt.wantCalls, ",") {
				t.Errorf("calls = %v, want %v", m.calls, tt.wantCalls)
			}
			if m.steps != tt.opts.steps {
				t.Errorf("steps = %d, want %d", m.steps, tt.opts.steps)
			}
			if out.String() != tt.wantOut {
				t.Errorf("output = %q, want %q", out.String(), tt.wantOut)
			}
		})
	}
}

func TestMigrate_Error(t *testing.T) {
	// Arrange
	boom := errors.New("boom")
	m := &fakeMigrator{err: boom}

	// Act
	err := migrate(context.Background(), m, options{direction: "up"}, io.Discard)

	// Assert
	if !errors.Is(err, boom) {
		t.Errorf("migrate() error = %v, want %v", err, boom)
	}
	if len(m.calls) != 1 {
		t.Errorf("calls = %v, status should not be queried after a failure", m.calls)
	}
}

func TestRun_InvalidArguments(t *testing.T) {
	// Arrange
	t.Setenv(config.EnvPostgresDSN, "")
	var stderr bytes.Buffer

	// Act
	code := run([]string{"-direction=status"}, io.Discard, &stderr)

	// Assert
	if code != 2 {
		t.Errorf("run() = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), config.EnvPostgresDSN) {
		t.Errorf("stderr = %q, want mention of %s", stderr.String(), config.EnvPostgresDSN)
	}
}
