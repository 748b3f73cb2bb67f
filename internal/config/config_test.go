package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ORDERS_TABLE", "orders")
	t.Setenv("PORT", "")
	t.Setenv("STORE_TIMEOUT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("RUN_LOCAL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Store.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v, want 5s", cfg.Store.Timeout)
	}
	if cfg.Region != "us-east-1" {
		t.Fatalf("region = %q, want us-east-1", cfg.Region)
	}
	if cfg.Server.RunLocal {
		t.Fatal("RunLocal should default to false")
	}
}

func TestLoad_ExplicitValues(t *testing.T) {
	t.Setenv("ORDERS_TABLE", "orders-prod")
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_TIMEOUT", "2s")
	t.Setenv("APP_ENV", "production")
	t.Setenv("AWS_REGION", "eu-central-1")
	t.Setenv("RUN_LOCAL", "true")
	t.Setenv("ORDERS_QUEUE_URL", "https://sqs.example/orders")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Store.TableName != "orders-prod" {
		t.Fatalf("table = %q", cfg.Store.TableName)
	}
	if cfg.Server.Port != "9090" || !cfg.Server.RunLocal {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Store.Timeout != 2*time.Second {
		t.Fatalf("timeout = %v", cfg.Store.Timeout)
	}
	if cfg.Events.QueueURL != "https://sqs.example/orders" {
		t.Fatalf("queue url = %q", cfg.Events.QueueURL)
	}
	if cfg.Env != "production" || cfg.Region != "eu-central-1" {
		t.Fatalf("env/region = %q/%q", cfg.Env, cfg.Region)
	}
}

func TestLoad_MissingTable(t *testing.T) {
	t.Setenv("ORDERS_TABLE", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing ORDERS_TABLE, got nil")
	}
}

func TestLoad_BadTimeout(t *testing.T) {
	t.Setenv("ORDERS_TABLE", "orders")
	t.Setenv("STORE_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unparseable STORE_TIMEOUT, got nil")
	}
}
