package dmpr

import "testing"

func TestConfigNormalizeFillsDefaults(t *testing.T) {
	cfg := Config{
		ID:          "A",
		MulticastV4: "224.0.0.100",
		MulticastV6: "ff02::100",
		Interfaces:  []Interface{{Name: "w0", AddrV4: "10.0.0.1"}},
	}

	got, warnings, err := cfg.normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one warning about defaulted link-characteristics, got %v", warnings)
	}
	if got.AdvertiseInterval != 30 {
		t.Fatalf("AdvertiseInterval = %d, want 30", got.AdvertiseInterval)
	}
	if got.AdvertiseIntervalJitter != 7 {
		t.Fatalf("AdvertiseIntervalJitter = %d, want 7 (30/4)", got.AdvertiseIntervalJitter)
	}
	if got.HoldTime != 90 {
		t.Fatalf("HoldTime = %d, want 90 (30*3)", got.HoldTime)
	}
	lc := got.Interfaces[0].LinkCharacteristics
	if lc == nil || *lc != defaultLinkCharacteristics {
		t.Fatalf("link-characteristics = %+v, want default", lc)
	}
}

func TestConfigNormalizeRejectsMissingID(t *testing.T) {
	cfg := Config{MulticastV4: "224.0.0.100", MulticastV6: "ff02::100", Interfaces: []Interface{{Name: "w0", AddrV4: "10.0.0.1"}}}
	if _, _, err := cfg.normalize(); err == nil {
		t.Fatal("expected a ConfigurationError for missing id")
	}
}

func TestConfigNormalizeRejectsNoInterfaces(t *testing.T) {
	cfg := Config{ID: "A", MulticastV4: "224.0.0.100", MulticastV6: "ff02::100"}
	if _, _, err := cfg.normalize(); err == nil {
		t.Fatal("expected a ConfigurationError for no interfaces")
	}
}

func TestConfigNormalizeRejectsMissingMulticastAddr(t *testing.T) {
	cfg := Config{ID: "A", MulticastV6: "ff02::100", Interfaces: []Interface{{Name: "w0", AddrV4: "10.0.0.1"}}}
	if _, _, err := cfg.normalize(); err == nil {
		t.Fatal("expected a ConfigurationError for missing mcast-v4-tx-addr")
	}
}

func TestConfigNormalizeRejectsBadNetworkProto(t *testing.T) {
	cfg := Config{
		ID:          "A",
		MulticastV4: "224.0.0.100",
		MulticastV6: "ff02::100",
		Interfaces:  []Interface{{Name: "w0", AddrV4: "10.0.0.1"}},
		Networks:    []Network{{Proto: "v5", Prefix: "10.0.0.0", PrefixLen: 24}},
	}
	if _, _, err := cfg.normalize(); err == nil {
		t.Fatal("expected a ConfigurationError for an invalid network proto")
	}
}
