package module

import (
	"testing"

	phttp "vassist/internal/platform/net/http"
)

type pinger interface{ Ping() string }

type fakePorts struct {
	P pinger
}

type fakePing struct{}

func (fakePing) Ping() string { return "pong" }

type fakeModule struct{}

func (fakeModule) MountRoutes(phttp.Router) {}
func (fakeModule) Ports() any               { return fakePorts{P: fakePing{}} }
func (fakeModule) Name() string             { return "fake" }

func TestRegistryRoundTrip(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	m := fakeModule{}
	Register(m.Name(), m.Ports())

	got, ok := PortsAs[fakePorts]("fake")
	if !ok {
		t.Fatal("ports not found after register")
	}
	if got.P.Ping() != "pong" {
		t.Fatalf("ping = %q, want pong", got.P.Ping())
	}

	if _, ok := PortsAs[fakePorts]("missing"); ok {
		t.Fatal("expected miss for unregistered name")
	}
	if _, ok := PortsAs[string]("fake"); ok {
		t.Fatal("expected miss for wrong type")
	}
}

func TestPortsOfWalksStructFields(t *testing.T) {
	m := fakeModule{}

	p, ok := PortsOf[pinger](m)
	if !ok {
		t.Fatal("pinger not found in ports struct")
	}
	if p.Ping() != "pong" {
		t.Fatalf("ping = %q, want pong", p.Ping())
	}

	if _, ok := PortsOf[interface{ Missing() }](m); ok {
		t.Fatal("expected miss for unimplemented interface")
	}
}

func TestMustPortsOfPanicsOnMiss(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for missing port")
		}
	}()
	MustPortsOf[interface{ Missing() }](fakeModule{})
}
