package dac

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/genricoloni/zonesync/internal/config"
	"github.com/genricoloni/zonesync/internal/domain"
	"go.uber.org/zap"
)

const getVolumeResponse = `<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body>
<u:GetVolumeResponse xmlns:u="urn:schemas-upnp-org:service:RenderingControl:1"><CurrentVolume>37</CurrentVolume></u:GetVolumeResponse>
</s:Body></s:Envelope>`

const faultResponse = `<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><s:Fault>
<faultcode>s:Client</faultcode><faultstring>UPnPError</faultstring>
<detail><UPnPError xmlns="urn:schemas-upnp-org:control-1-0"><errorCode>501</errorCode><errorDescription>Action Failed</errorDescription></UPnPError></detail>
</s:Fault></s:Body></s:Envelope>`

func TestBackend_Configuration(t *testing.T) {
	b := New(zap.NewNop(), config.DACConfig{})
	if b.IsConfigured() || b.IsEnabled() {
		t.Error("backend without address must be unconfigured")
	}
	if _, err := b.GetVolume(context.Background()); !errors.Is(err, domain.ErrNotConfigured) {
		t.Errorf("GetVolume err = %v, want ErrNotConfigured", err)
	}

	b = New(zap.NewNop(), config.DACConfig{Address: "192.168.1.50:49152", ControlPath: "ctl"})
	if !b.IsConfigured() || !b.IsEnabled() {
		t.Error("backend with address must be configured and enabled")
	}
	if b.endpoint != "http://192.168.1.50:49152/ctl" {
		t.Errorf("endpoint = %q", b.endpoint)
	}
	if b.Kind() != domain.TargetHardwareDAC || b.Handle() != "192.168.1.50:49152" {
		t.Errorf("kind/handle = %v/%v", b.Kind(), b.Handle())
	}
}

func TestBackend_GetAndSetVolume(t *testing.T) {
	var lastAction, lastBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		lastAction = r.Header.Get("SOAPACTION")
		lastBody = string(data)
		if strings.Contains(lastAction, "#GetVolume") {
			_, _ = w.Write([]byte(getVolumeResponse))
			return
		}
		_, _ = w.Write([]byte(`<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/"><s:Body><u:SetVolumeResponse xmlns:u="urn:schemas-upnp-org:service:RenderingControl:1"/></s:Body></s:Envelope>`))
	}))
	defer srv.Close()

	b := New(zap.NewNop(), config.DACConfig{Address: srv.URL, ControlPath: "/RenderingControl/ctrl"})

	v, err := b.GetVolume(context.Background())
	if err != nil {
		t.Fatalf("GetVolume: %v", err)
	}
	if v != 37 {
		t.Errorf("volume = %d, want 37", v)
	}

	if err := b.SetVolume(context.Background(), 120); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}
	if lastAction != `"urn:schemas-upnp-org:service:RenderingControl:1#SetVolume"` {
		t.Errorf("SOAPACTION = %s", lastAction)
	}
	if !strings.Contains(lastBody, "<DesiredVolume>100</DesiredVolume>") || !strings.Contains(lastBody, "<Channel>Master</Channel>") {
		t.Errorf("body = %s", lastBody)
	}
}

func TestBackend_Fault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(faultResponse))
	}))
	defer srv.Close()

	b := New(zap.NewNop(), config.DACConfig{Address: srv.URL, ControlPath: "/c"})
	err := b.SetVolume(context.Background(), 10)
	if err == nil || !strings.Contains(err.Error(), "Action Failed") {
		t.Errorf("err = %v, want fault description", err)
	}
}
