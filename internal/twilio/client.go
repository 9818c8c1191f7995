package twilio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"carecall/internal/apperror"
	"carecall/internal/model"
)

// Client wraps outbound Twilio voice calls.
type Client struct {
	client     *twilio.RestClient
	fromNumber string
	baseURL    string
	logger     *log.Logger
}

// New creates a Twilio client bound to the configured caller number.
// publicBaseURL is where Twilio fetches the voice script from.
func New(accountSID, authToken, fromNumber, publicBaseURL string, logger *log.Logger) *Client {
	return &Client{
		client:     twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken}),
		fromNumber: fromNumber,
		baseURL:    strings.TrimRight(publicBaseURL, "/"),
		logger:     logger,
	}
}

// PlaceCall places an outbound voice call to the reminder's owner. The
// callback URL carries the reminder id so the voice webhook can build
// the right script. Returns the provider-assigned call SID.
func (c *Client) PlaceCall(_ context.Context, user *model.User, reminder *model.Reminder) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("twilio client not initialised")
	}
	if c.fromNumber == "" {
		return "", fmt.Errorf("twilio caller number is not configured")
	}

	callbackURL := fmt.Sprintf("%s/voice?reminder_id=%s", c.baseURL, url.QueryEscape(reminder.ID))

	params := &openapi.CreateCallParams{}
	params.SetTo(user.Phone)
	params.SetFrom(c.fromNumber)
	params.SetUrl(callbackURL)
	params.SetMethod(http.MethodPost)

	resp, err := c.client.Api.CreateCall(params)
	if err != nil {
		return "", apperror.Dispatch(reminder.ID, err)
	}
	if resp.Sid == nil {
		return "", apperror.Dispatch(reminder.ID, errors.New("no call sid returned"))
	}

	c.logger.Printf("twilio: call placed, sid=%s to=%s kind=%s", *resp.Sid, user.Phone, reminder.Kind)
	return *resp.Sid, nil
}
