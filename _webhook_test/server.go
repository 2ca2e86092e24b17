package main

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WebhookPayload matches the delivery format produced by the webhook sender
type WebhookPayload struct {
	Event     string         `json:"event"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// WebhookLog is what gets written to disk for each delivery
type WebhookLog struct {
	ReceivedAt time.Time         `json:"received_at"`
	Event      string            `json:"event"`
	Timestamp  string            `json:"timestamp"`
	Data       map[string]any    `json:"data"`
	Headers    map[string]string `json:"headers"`
	Verified   bool              `json:"secret_verified"`
	RawPayload string            `json:"raw_payload"`
}

const (
	// Must match the webhook secret stored in the database
	TestSecret = "test-secret-key-123"
	LogDir     = "_webhook_test/logs"
)

func main() {
	if err := os.MkdirAll(LogDir, 0755); err != nil {
		log.Fatal("Failed to create logs directory:", err)
	}

	http.HandleFunc("/webhook", handleWebhook)
	http.HandleFunc("/", handleRoot)

	port := ":9000"
	fmt.Println("Webhook Test Server Started")
	fmt.Println("================================")
	fmt.Printf("Listening on http://localhost%s\n", port)
	fmt.Printf("Webhook endpoint: http://localhost%s/webhook\n", port)
	fmt.Printf("Logs directory: %s\n", LogDir)
	fmt.Printf("Test secret: %s\n", TestSecret)
	fmt.Println("================================")
	fmt.Println("\nWaiting for webhooks...")

	if err := http.ListenAndServe(port, nil); err != nil {
		log.Fatal("Server failed:", err)
	}
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	html := `
<!DOCTYPE html>
<html>
<head>
    <title>Webhook Test Server</title>
    <style>
        body { font-family: Arial, sans-serif; max-width: 800px; margin: 50px auto; padding: 20px; }
        .status { background: #e8f5e9; padding: 20px; border-radius: 8px; margin: 20px 0; }
        .endpoint { background: #f5f5f5; padding: 10px; border-radius: 4px; font-family: monospace; }
        h1 { color: #2e7d32; }
        code { background: #f5f5f5; padding: 2px 6px; border-radius: 3px; }
    </style>
</head>
<body>
    <h1>Webhook Test Server</h1>
    <div class="status">
        <h2>Server is Running</h2>
        <p><strong>Webhook Endpoint:</strong></p>
        <div class="endpoint">POST http://localhost:9000/webhook</div>
        <p><strong>Test Secret:</strong> <code>test-secret-key-123</code></p>
        <p><strong>Logs Directory:</strong> <code>_webhook_test/logs/</code></p>
    </div>

    <h2>Test Instructions</h2>
    <ol>
        <li>Create a webhook with URL: <code>http://localhost:9000/webhook</code></li>
        <li>Set the secret to: <code>test-secret-key-123</code></li>
        <li>Create a field definition or commit unit values to trigger an event</li>
        <li>Check the logs directory for received webhooks</li>
    </ol>

    <h2>Recent Webhooks</h2>
    <p>Check the <code>_webhook_test/logs/</code> directory for webhook logs</p>
</body>
</html>
`
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(html))
}

func handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading body: %v\n", err)
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var payload WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("Error parsing JSON: %v\n", err)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	headers := make(map[string]string)
	for key, values := range r.Header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}

	// The sender puts the shared secret in the Authorization header
	secret := r.Header.Get("Authorization")
	verified := secret != "" && subtle.ConstantTimeCompare([]byte(secret), []byte(TestSecret)) == 1

	webhookLog := WebhookLog{
		ReceivedAt: time.Now(),
		Event:      payload.Event,
		Timestamp:  payload.Timestamp,
		Data:       payload.Data,
		Headers:    headers,
		Verified:   verified,
		RawPayload: string(body),
	}

	if err := saveWebhookLog(webhookLog); err != nil {
		log.Printf("Error saving log: %v\n", err)
	}

	logToConsole(webhookLog)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "success",
		"message":  "Webhook received and logged",
		"event":    payload.Event,
		"verified": verified,
	})
}

func saveWebhookLog(webhookLog WebhookLog) error {
	timestamp := webhookLog.ReceivedAt.Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.json", timestamp, strings.ReplaceAll(webhookLog.Event, "/", "_"))
	path := filepath.Join(LogDir, filename)

	jsonData, err := json.MarshalIndent(webhookLog, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return err
	}

	fmt.Printf("Saved to: %s\n", path)
	return nil
}

func logToConsole(webhookLog WebhookLog) {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Printf("WEBHOOK RECEIVED: %s\n", webhookLog.Event)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Received At: %s\n", webhookLog.ReceivedAt.Format(time.RFC3339))
	fmt.Printf("Event Timestamp: %s\n", webhookLog.Timestamp)

	if webhookLog.Verified {
		fmt.Println("Secret: VERIFIED")
	} else {
		fmt.Println("Secret: NOT VERIFIED")
	}

	fmt.Println("\nHeaders:")
	for key, value := range webhookLog.Headers {
		if key == "X-Webhook-Event" || key == "X-Webhook-Id" || key == "User-Agent" {
			fmt.Printf("   %s: %s\n", key, value)
		}
	}

	fmt.Println("\nData:")
	dataJSON, _ := json.MarshalIndent(webhookLog.Data, "   ", "  ")
	fmt.Printf("   %s\n", string(dataJSON))

	fmt.Println(strings.Repeat("=", 80))
}
