// README: FCM HTTP v1 push client.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ridebooking/internal/types"
)

// FCMClient posts notification messages to the FCM HTTP v1 endpoint using a
// server key or OAuth token.
type FCMClient struct {
	Endpoint string
	Key      string
	Client   *http.Client
}

func NewFCMClient(endpoint, key string) *FCMClient {
	return &FCMClient{Endpoint: endpoint, Key: key, Client: &http.Client{Timeout: 3 * time.Second}}
}

func (f *FCMClient) Notify(ctx context.Context, driverID types.ID, token, title, body string) error {
	if token == "" {
		return fmt.Errorf("driver %s has no notification token", driverID)
	}
	payload := map[string]any{
		"message": map[string]any{
			"token": token,
			"notification": map[string]any{
				"title": title,
				"body":  body,
			},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.Endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if f.Key != "" {
		req.Header.Set("Authorization", "Bearer "+f.Key)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("fcm returned status %d", resp.StatusCode)
	}
	return nil
}
