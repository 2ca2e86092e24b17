package webhook

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/getevo/evo/v2/lib/args"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/iesreza/stayhub-backend/apps/models"
)

// GenerateMockWebhook creates a mock webhook for testing
func GenerateMockWebhook() {
	if args.Get("--generate-webhook") == "" {
		return
	}

	rand.Seed(time.Now().UnixNano())

	// Get URL from arguments or use default mock URL
	url := args.Get("--url")
	if url == "" {
		url = "https://webhook.site/unique-id-here" // Replace with actual webhook.site URL for testing
	}

	webhookTypes := []string{
		"Channel Manager Sync",
		"PMS Integration",
		"Zapier Automation",
		"Custom API Integration",
		"Pricing Engine",
		"Analytics Platform",
	}

	webhookType := webhookTypes[rand.Intn(len(webhookTypes))]

	webhook := models.Webhook{
		Name:        fmt.Sprintf("%s - %d", webhookType, rand.Intn(1000)),
		URL:         url,
		Secret:      generateRandomSecret(),
		Enabled:     true,
		Description: fmt.Sprintf("Auto-generated mock webhook for testing - %s", time.Now().Format(time.RFC3339)),
	}

	// Randomly subscribe to events
	webhook.EventFieldDefinitionCreated = rand.Intn(2) == 1
	webhook.EventFieldDefinitionUpdated = rand.Intn(2) == 1
	webhook.EventFieldDefinitionDeleted = rand.Intn(2) == 1
	webhook.EventFieldGroupCreated = rand.Intn(2) == 1
	webhook.EventFieldGroupUpdated = rand.Intn(2) == 1
	webhook.EventFieldGroupDeleted = rand.Intn(2) == 1
	webhook.EventUnitCreated = rand.Intn(2) == 1
	webhook.EventUnitValuesCommitted = rand.Intn(2) == 1

	// Ensure at least one event is subscribed
	if !webhook.EventFieldDefinitionCreated && !webhook.EventFieldDefinitionUpdated &&
		!webhook.EventFieldDefinitionDeleted && !webhook.EventFieldGroupCreated &&
		!webhook.EventFieldGroupUpdated && !webhook.EventFieldGroupDeleted &&
		!webhook.EventUnitCreated && !webhook.EventUnitValuesCommitted {
		webhook.EventFieldDefinitionCreated = true
	}

	// 20% chance to subscribe to all events
	if rand.Intn(5) == 0 {
		webhook.EventAll = true
	}

	if err := db.Create(&webhook).Error; err != nil {
		fmt.Printf("Failed to create mock webhook: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Mock webhook created successfully!")
	fmt.Printf("   ID: %d\n", webhook.ID)
	fmt.Printf("   Name: %s\n", webhook.Name)
	fmt.Printf("   URL: %s\n", webhook.URL)
	fmt.Printf("   Secret: %s\n", webhook.Secret)
	fmt.Printf("   Enabled: %v\n", webhook.Enabled)
	fmt.Println("\nEvent Subscriptions:")
	fmt.Printf("   All Events: %v\n", webhook.EventAll)
	fmt.Printf("   Field Definition Created: %v\n", webhook.EventFieldDefinitionCreated)
	fmt.Printf("   Field Definition Updated: %v\n", webhook.EventFieldDefinitionUpdated)
	fmt.Printf("   Field Definition Deleted: %v\n", webhook.EventFieldDefinitionDeleted)
	fmt.Printf("   Field Group Created: %v\n", webhook.EventFieldGroupCreated)
	fmt.Printf("   Field Group Updated: %v\n", webhook.EventFieldGroupUpdated)
	fmt.Printf("   Field Group Deleted: %v\n", webhook.EventFieldGroupDeleted)
	fmt.Printf("   Unit Created: %v\n", webhook.EventUnitCreated)
	fmt.Printf("   Unit Values Committed: %v\n", webhook.EventUnitValuesCommitted)

	// Test sending the webhook if --send flag is provided
	if args.Get("--send") != "" {
		fmt.Println("\nSending test webhook...")

		testData := map[string]any{
			"test":       true,
			"message":    "This is a mock test webhook",
			"webhook_id": webhook.ID,
			"timestamp":  time.Now().Format(time.RFC3339),
			"random_data": map[string]any{
				"field_id":      rand.Intn(1000),
				"owner_scope":   []string{models.OwnerScopePropertyType, models.OwnerScopeUnitType}[rand.Intn(2)],
				"owner_type_id": rand.Intn(100),
			},
		}

		if err := SendWebhook(&webhook, models.WebhookEventWebhookTest, testData); err != nil {
			fmt.Printf("Failed to send test webhook: %v\n", err)
		} else {
			fmt.Println("Test webhook sent successfully!")
			fmt.Println("Check your webhook URL to see the received payload")
		}
	}

	os.Exit(0)
}

// generateRandomSecret creates a random secret key
func generateRandomSecret() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	secret := make([]byte, 32)
	for i := range secret {
		secret[i] = charset[rand.Intn(len(charset))]
	}
	return string(secret)
}
