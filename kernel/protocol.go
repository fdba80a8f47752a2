package kernel

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Wire format: every message is two frames, [signature, payload]. The
// signature is hex(HMAC-SHA256(key, payload)). An empty key disables
// signing and the signature frame must be empty.

func sign(payload []byte, key string) string {
	if key == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func verify(signature string, payload []byte, key string) bool {
	expected := sign(payload, key)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// EncodeRequest renders a signed request as wire frames.
func EncodeRequest(req Request, key string) ([][]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return [][]byte{[]byte(sign(payload, key)), payload}, nil
}

// DecodeRequest validates frames against the key and unmarshals the
// payload. A bad signature fails before the payload is touched.
func DecodeRequest(frames [][]byte, key string) (Request, error) {
	payload, err := checkFrames(frames, key)
	if err != nil {
		return Request{}, err
	}
	var req Request
	if err := json.Unmarshal(payload, &req); err != nil {
		return Request{}, fmt.Errorf("malformed request: %w", err)
	}
	return req, nil
}

// EncodeReply renders a signed reply as wire frames.
func EncodeReply(reply Reply, key string) ([][]byte, error) {
	payload, err := json.Marshal(reply)
	if err != nil {
		return nil, err
	}
	return [][]byte{[]byte(sign(payload, key)), payload}, nil
}

// DecodeReply validates frames against the key and unmarshals the
// payload.
func DecodeReply(frames [][]byte, key string) (Reply, error) {
	payload, err := checkFrames(frames, key)
	if err != nil {
		return Reply{}, err
	}
	var reply Reply
	if err := json.Unmarshal(payload, &reply); err != nil {
		return Reply{}, fmt.Errorf("malformed reply: %w", err)
	}
	return reply, nil
}

func checkFrames(frames [][]byte, key string) ([]byte, error) {
	if len(frames) != 2 {
		return nil, fmt.Errorf("expected 2 frames, got %d", len(frames))
	}
	signature, payload := string(frames[0]), frames[1]
	if !verify(signature, payload, key) {
		return nil, fmt.Errorf("signature mismatch")
	}
	return payload, nil
}
