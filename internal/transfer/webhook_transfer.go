package transfer

import "encoding/json"

const EventUserCreated = "user.created"

type WebhookEvent struct {
	Type   string          `json:"type"`
	Object string          `json:"object"`
	Data   json.RawMessage `json:"data"`
}

type EmailAddress struct {
	ID           string `json:"id"`
	EmailAddress string `json:"email_address"`
}

type UserCreatedData struct {
	ID                    string         `json:"id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id"`
}

// PrimaryEmail returns the address whose id matches primary_email_address_id.
func (d *UserCreatedData) PrimaryEmail() (string, bool) {
	for _, e := range d.EmailAddresses {
		if e.ID == d.PrimaryEmailAddressID {
			return e.EmailAddress, true
		}
	}
	return "", false
}

type IdentityUser struct {
	ID             string `json:"id"`
	PublicMetadata struct {
		Role string `json:"role"`
	} `json:"public_metadata"`
}
