package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joho/godotenv"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/auth"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	testAppBinary         = "./gtextsuite_test_app" // Name for the test binary
	testAppPort           = "8089"                  // Port for the test server
	testServiceApiPortApi = "8091"                  // Port for Service API run by API process
	testServiceApiPortBg  = "8092"                  // Port for Service API run by BG process (if any)
	testAppURL            = "http://localhost:" + testAppPort
	testServiceApiURL     = "http://localhost:" + testServiceApiPortApi // Use API process's service port
	testDbName            = "gtextsuite_e2e"
	startupTimeout        = 15 * time.Second
	healthEndpoint        = testAppURL + "/health"

	seededAdminEmail    = "admin-e2e@example.com"
	seededAdminPassword = "AdminPass123!"
)

var seededPropertyID primitive.ObjectID

// TestMain manages the setup and teardown of the integration test environment.
func TestMain(m *testing.M) {
	// Defer cleanup actions to ensure they run even if setup fails
	defer func() {
		log.Println("Integration Test Teardown: Cleaning up test binary...")
		_ = os.Remove(testAppBinary)
	}()

	log.Println("Integration Test Setup: Building application...")
	godotenv.Load()
	buildCmd := exec.Command("go", "build", "-o", testAppBinary, ".")
	buildOutput, err := buildCmd.CombinedOutput()
	if err != nil {
		log.Printf("Failed to build application: %v\nOutput:\n%s", err, string(buildOutput))
		os.Exit(1)
	}
	log.Printf("Integration Test Setup: Build successful: %s", testAppBinary)

	// --- Seed required data ---
	seedErr := seedTestData()
	if seedErr != nil {
		log.Printf("Failed to seed test data: %v", seedErr)
		os.Exit(1)
	}
	defer cleanupTestData()

	appEnv := append(os.Environ(),
		"MONGO_DB_NAME="+testDbName,
		"JWT_SECRET=integration-test-secret",
		"GIN_MODE=release",
		"MOCK_SERVICES=true",
		"REDIS_ADDR=localhost:6379",
		"SMTP_FROM_ADDRESS=test@example.com", // Needed by mock sender
		"RATE_LIMIT_SOFT_BUCKET_SIZE=50",
		"RATE_LIMIT_SOFT_REFILL_RATE=50",
		"RATE_LIMIT_HARD_BUCKET_SIZE=50",
		"RATE_LIMIT_HARD_REFILL_RATE=50",
	)

	// --- Start API Process ---
	apiCmd := exec.Command(testAppBinary, "-m", "api")
	apiCmd.Env = append(appEnv,
		"API_PORT="+testAppPort,
		"SERVICE_API_PORT="+testServiceApiPortApi,
	)
	apiCmd.Stderr = os.Stderr
	apiCmd.Stdout = os.Stdout

	log.Println("Integration Test Setup: Starting API process...")
	err = apiCmd.Start()
	if err != nil {
		log.Printf("Failed to start API process: %v", err)
		os.Exit(1)
	}
	log.Printf("Integration Test Setup: API process started (PID: %d)...", apiCmd.Process.Pid)

	// --- Start Background Worker Process ---
	bgCmd := exec.Command(testAppBinary, "-m", "bg")
	bgCmd.Env = append(appEnv,
		"SERVICE_API_PORT="+testServiceApiPortBg,
	)
	bgCmd.Stderr = os.Stderr
	bgCmd.Stdout = os.Stdout

	log.Println("Integration Test Setup: Starting Background Worker process...")
	err = bgCmd.Start()
	if err != nil {
		// Attempt to kill API process before exiting if BG process fails to start
		_ = apiCmd.Process.Kill()
		log.Printf("Failed to start Background Worker process: %v", err)
		os.Exit(1)
	}
	log.Printf("Integration Test Setup: Background Worker process started (PID: %d)...", bgCmd.Process.Pid)

	// Defer shutdown logic for BOTH processes
	defer func() {
		log.Println("Integration Test Teardown: Shutting down application processes...")
		log.Println("Sending SIGTERM to Background Worker...")
		if processErr := bgCmd.Process.Signal(syscall.SIGTERM); processErr != nil {
			log.Printf("Integration Test Teardown: Failed to send SIGTERM to BG Worker: %v. Killing.", processErr)
			_ = bgCmd.Process.Kill()
		} else {
			_, waitErr := bgCmd.Process.Wait()
			if waitErr != nil && waitErr.Error() != "signal: killed" && waitErr.Error() != "exit status 1" {
				log.Printf("Integration Test Teardown: Error waiting for BG Worker exit: %v", waitErr)
			}
		}
		log.Println("Sending SIGTERM to API Process...")
		if processErr := apiCmd.Process.Signal(syscall.SIGTERM); processErr != nil {
			log.Printf("Integration Test Teardown: Failed to send SIGTERM to API Process: %v. Killing.", processErr)
			_ = apiCmd.Process.Kill()
		} else {
			_, waitErr := apiCmd.Process.Wait()
			if waitErr != nil && waitErr.Error() != "signal: killed" && waitErr.Error() != "exit status 1" {
				log.Printf("Integration Test Teardown: Error waiting for API Process exit: %v", waitErr)
			}
		}
		log.Println("Integration Test Teardown: Application processes stopped.")
	}()

	// Wait for the API application to be ready by polling the health endpoint
	log.Printf("Integration Test Setup: Waiting for API application to become ready at %s...", healthEndpoint)
	startTime := time.Now()
	ready := false
	for time.Since(startTime) < startupTimeout {
		resp, err := http.Get(healthEndpoint)
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			log.Println("Integration Test Setup: Application is ready!")
			ready = true
			break
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(200 * time.Millisecond)
	}

	if !ready {
		log.Printf("Application failed to start within %v", startupTimeout)
		os.Exit(1)
	}

	// Pause briefly so the background worker connects to Redis before we
	// start enqueueing notification tasks.
	log.Println("Integration Test Setup: Pausing briefly for background worker startup...")
	time.Sleep(2 * time.Second)

	log.Println("Integration Test Setup: Running tests...")
	exitCode := m.Run()
	log.Printf("Integration Test Teardown: Tests finished with exit code %d.", exitCode)
	// Let TestMain return normally so deferred teardown runs. The test
	// runner handles the exit code.
}

// seedTestData connects to MongoDB and inserts the admin account and the
// listing the end-to-end tests book against.
func seedTestData() error {
	log.Println("Seeding test data...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		return fmt.Errorf("MONGO_URI must be set for integration tests")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB for seeding: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting seeding client: %v", err)
		}
	}()

	db := client.Database(testDbName)
	if err := db.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop stale test database: %w", err)
	}

	hash, err := auth.HashPassword(seededAdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	now := time.Now().UTC()
	admin := models.User{
		Name:         "E2E Admin",
		Email:        seededAdminEmail,
		PasswordHash: hash,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := db.Collection("users").InsertOne(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	log.Println("Successfully seeded admin user.")

	price := 3650.0
	property := models.Property{
		ID:              primitive.NewObjectID(),
		Title:           "Marina Vista Apartment",
		Description:     "Two bedroom apartment used by the end-to-end suite",
		Location:        "Lagos",
		PropertyPurpose: models.PurposeRental,
		Price:           "$3,650",
		PriceNumeric:    &price,
		Size:            "120 sqm",
		IsActive:        true,
		IsListed:        true,
		Images:          []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if _, err := db.Collection("properties").InsertOne(ctx, property); err != nil {
		return fmt.Errorf("failed to seed property: %w", err)
	}
	seededPropertyID = property.ID
	log.Printf("Successfully seeded property %s.", property.ID.Hex())

	return nil
}

// cleanupTestData removes seeded test data.
func cleanupTestData() {
	log.Println("Cleaning up seeded test data...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		return
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Printf("Failed to connect for cleanup: %v", err)
		return
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if err := client.Database(testDbName).Drop(ctx); err != nil {
		log.Printf("Failed to drop test database during cleanup: %v", err)
	}
	log.Println("Finished cleaning up seeded data.")
}

// doJSON performs an HTTP request with an optional bearer token and JSON body
// and decodes the JSON response.
func doJSON(t *testing.T, method, rawURL, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err, "Should be able to marshal request body")
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, rawURL, reqBody)
	require.NoError(t, err, "Should be able to build request")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "Request to %s should not fail", rawURL)
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Should be able to read response body")

	var parsed map[string]interface{}
	if len(bodyBytes) > 0 {
		require.NoError(t, json.Unmarshal(bodyBytes, &parsed), "Response should be JSON: %s", string(bodyBytes))
	}
	return resp.StatusCode, parsed
}

// loginAs logs in through the public API and returns the bearer token.
func loginAs(t *testing.T, email, password string) string {
	t.Helper()
	status, resp := doJSON(t, http.MethodPost, testAppURL+"/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, "Login should succeed for %s: %v", email, resp)
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "Login response should carry data")
	token, _ := data["token"].(string)
	require.NotEmpty(t, token, "Login response should carry a token")
	return token
}

// pollTestEmail polls the service API for a mock email until found or timeout.
func pollTestEmail(t *testing.T, address, templateID string) map[string]interface{} {
	t.Helper()
	endpoint := fmt.Sprintf("%s/getTestEmail?email=%s&template=%s",
		testServiceApiURL, url.QueryEscape(address), url.QueryEscape(templateID))

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(endpoint)
		if err != nil {
			log.Printf("Error calling getTestEmail Service API: %v", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			var parsed map[string]interface{}
			require.NoError(t, json.Unmarshal(bodyBytes, &parsed))
			email, ok := parsed["data"].(map[string]interface{})
			require.True(t, ok, "getTestEmail response should carry email data")
			return email
		}
		log.Printf("getTestEmail returned status %d for template %s. Polling...", resp.StatusCode, templateID)
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for mock email %s to %s", templateID, address)
	return nil
}

// TestIntegration_Health checks the liveness endpoint of the running server.
func TestIntegration_Health(t *testing.T) {
	resp, err := http.Get(healthEndpoint)
	assert.NoError(t, err, "Request to %s should not fail", healthEndpoint)
	if err != nil {
		t.FailNow()
	}
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status code OK (200)")

	bodyBytes, err := io.ReadAll(resp.Body)
	assert.NoError(t, err, "Should be able to read response body")
	assert.Contains(t, string(bodyBytes), "ok", "Health body should report ok")
}

// TestIntegration_RegisterLoginMe registers an account, logs in and reads
// the profile back through the authenticated endpoint.
func TestIntegration_RegisterLoginMe(t *testing.T) {
	email := fmt.Sprintf("user-%d@example.com", time.Now().UnixNano())

	status, resp := doJSON(t, http.MethodPost, testAppURL+"/v1/auth/register", "", map[string]string{
		"name":     "E2E User",
		"email":    email,
		"password": "UserPass123!",
	})
	require.Equal(t, http.StatusCreated, status, "Register should return 201: %v", resp)

	token := loginAs(t, email, "UserPass123!")

	status, resp = doJSON(t, http.MethodGet, testAppURL+"/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, status)
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "Me response should carry data")
	assert.Equal(t, email, data["email"], "Profile email should match registration")
	assert.Equal(t, false, data["is_admin"], "Self-registered accounts must not be admin")
}

// TestIntegration_AuthRequired confirms protected endpoints reject anonymous
// callers.
func TestIntegration_AuthRequired(t *testing.T) {
	status, _ := doJSON(t, http.MethodGet, testAppURL+"/v1/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status, "Listing bookings anonymously should return 401")

	status, _ = doJSON(t, http.MethodPost, testAppURL+"/v1/admin/properties", "", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, status, "Admin endpoints should return 401 without a token")
}

// TestIntegration_BookingLifecycle drives a guest booking end to end: create
// through the public API, observe the received email via the mock sender,
// confirm as admin and observe the confirmation email.
func TestIntegration_BookingLifecycle(t *testing.T) {
	guestEmail := fmt.Sprintf("guest-%d@example.com", time.Now().UnixNano())
	checkIn := time.Now().UTC().AddDate(0, 0, 30).Format("2006-01-02")
	checkOut := time.Now().UTC().AddDate(0, 0, 35).Format("2006-01-02")

	// Create as an anonymous guest
	status, resp := doJSON(t, http.MethodPost, testAppURL+"/v1/bookings", "", map[string]interface{}{
		"property_id": seededPropertyID.Hex(),
		"guest_info": map[string]string{
			"full_name": "Grace Guest",
			"email":     guestEmail,
			"phone":     "+2348000000000",
		},
		"check_in":     checkIn,
		"check_out":    checkOut,
		"guests":       2,
		"booking_type": "shortlet",
	})
	require.Equal(t, http.StatusCreated, status, "Booking creation should return 201: %v", resp)

	booking, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "Booking response should carry data")
	bookingID, _ := booking["id"].(string)
	require.NotEmpty(t, bookingID, "Booking should have an id")
	assert.Equal(t, "pending", booking["status"], "New bookings start pending")
	assert.InDelta(t, 5.0, booking["nights"], 0.001, "Five nights between the dates")
	assert.InDelta(t, 50.0, booking["total_amount"], 0.001, "Total should be nights x nightly rate")

	// The received notification goes through asynq to the BG worker, which
	// stores it in Redis via the mock sender.
	received := pollTestEmail(t, guestEmail, "booking_received")
	assert.Contains(t, received["subject"], "Marina Vista Apartment")
	assert.Contains(t, received["body"], "Grace Guest")
	assert.Contains(t, received["to"], guestEmail)

	// Confirm as admin
	adminToken := loginAs(t, seededAdminEmail, seededAdminPassword)
	status, resp = doJSON(t, http.MethodPatch,
		testAppURL+"/v1/admin/bookings/"+bookingID+"/status", adminToken,
		map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, status, "Status update should return 200: %v", resp)
	updated, ok := resp["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "confirmed", updated["status"])

	confirmed := pollTestEmail(t, guestEmail, "booking_confirmed")
	assert.Contains(t, confirmed["body"], "Marina Vista Apartment")

	// Guest bookings are only visible to admins
	status, resp = doJSON(t, http.MethodGet, testAppURL+"/v1/bookings/"+bookingID, adminToken, nil)
	assert.Equal(t, http.StatusOK, status, "Admin should see the guest booking: %v", resp)
}

// TestIntegration_SimpleInquiry submits an anonymous quick inquiry against
// the seeded listing.
func TestIntegration_SimpleInquiry(t *testing.T) {
	status, resp := doJSON(t, http.MethodPost, testAppURL+"/v1/inquiries/simple", "", map[string]interface{}{
		"full_name":   "Ivy Interested",
		"email":       "ivy-e2e@example.com",
		"phone":       "+2348111111111",
		"property_id": seededPropertyID.Hex(),
		"message":     "Is this available from next month?",
	})
	require.Equal(t, http.StatusCreated, status, "Simple inquiry should return 201: %v", resp)

	inquiry, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "Inquiry response should carry data")
	assert.Equal(t, "sale", inquiry["inquiry_type"], "Rental listings take sale inquiries")
	assert.Equal(t, "Marina Vista Apartment", inquiry["property_name"])
	assert.Equal(t, "pending", inquiry["status"])
}

// TestIntegration_PropertyDiscovery lists the public catalogue and fetches
// the seeded listing with its computed numeric price.
func TestIntegration_PropertyDiscovery(t *testing.T) {
	status, resp := doJSON(t, http.MethodGet, testAppURL+"/v1/properties?location=lagos", "", nil)
	require.Equal(t, http.StatusOK, status, "Property listing should return 200: %v", resp)
	items, ok := resp["data"].([]interface{})
	require.True(t, ok, "Listing response should carry a data array")
	require.NotEmpty(t, items, "Seeded property should be discoverable")

	status, resp = doJSON(t, http.MethodGet, testAppURL+"/v1/properties/"+seededPropertyID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, status)
	property, ok := resp["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "$3,650", property["price"])
	assert.InDelta(t, 3650.0, property["price_numeric"], 0.001)
}
