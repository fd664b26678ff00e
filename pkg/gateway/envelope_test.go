package gateway

import (
	"encoding/json"
	"testing"
)

func TestNormalizeWrapsPlainBody(t *testing.T) {
	env := Normalize([]byte(`{"id":"1","name":"demo"}`))

	if env.Error {
		t.Fatalf("expected success envelope")
	}
	if env.Message != "Success" {
		t.Fatalf("unexpected message %q", env.Message)
	}
	var data map[string]string
	if err := env.DecodeData(&data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data["id"] != "1" {
		t.Fatalf("unexpected data %v", data)
	}
}

func TestNormalizePassesThroughEnvelope(t *testing.T) {
	env := Normalize([]byte(`{"error":false,"message":"ok","data":{"id":"1"}}`))

	if env.Error {
		t.Fatalf("expected success envelope")
	}
	if env.Message != "ok" {
		t.Fatalf("pass-through should keep the message, got %q", env.Message)
	}
}

func TestNormalizeKeepsErrorEnvelope(t *testing.T) {
	env := Normalize([]byte(`{"error":true,"message":"nope","statusCode":422}`))

	if !env.Error {
		t.Fatalf("expected error envelope")
	}
	if env.Message != "nope" || env.StatusCode != 422 {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	bodies := [][]byte{
		[]byte(`{"id":"1"}`),
		[]byte(`{"error":false,"message":"ok","data":{"id":"1"}}`),
		[]byte(`[1,2,3]`),
		[]byte(`"hello"`),
		nil,
	}

	for _, body := range bodies {
		once := Normalize(body)
		raw, err := json.Marshal(once)
		if err != nil {
			t.Fatalf("marshal envelope: %v", err)
		}
		twice := Normalize(raw)
		if once.Error != twice.Error || once.Message != twice.Message {
			t.Fatalf("normalization not idempotent for %s: %+v vs %+v", body, once, twice)
		}
	}
}

func TestNormalizeNonObjectBodies(t *testing.T) {
	env := Normalize([]byte(`[1,2,3]`))
	if env.Error || env.Message != "Success" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if string(env.Data) != "[1,2,3]" {
		t.Fatalf("unexpected data %s", env.Data)
	}

	env = Normalize(nil)
	if env.Error || env.Message != "Success" {
		t.Fatalf("empty body should wrap to bare success, got %+v", env)
	}
}

func TestNormalizeMalformedErrorFieldWraps(t *testing.T) {
	// "error" present but not a bool: the body cannot be the envelope, so it
	// gets wrapped as payload instead.
	env := Normalize([]byte(`{"error":"strange","value":1}`))
	if env.Error {
		t.Fatalf("expected wrapped success, got %+v", env)
	}
	if len(env.Data) == 0 {
		t.Fatalf("expected original body as data")
	}
}
