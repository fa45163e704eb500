package repository

import (
	"encoding/json"
	"fmt"
	"slices"

	"order-service/internal/fieldcrypt"
	"order-service/internal/model"
)

// documentCodec is the only place PII crosses the encryption boundary.
// Orders are plaintext in memory and encrypted in the stored document.
type documentCodec struct {
	cipher fieldcrypt.Cipher
}

type piiField struct {
	name  string
	value *string
}

// piiFields lists every encrypted customer field. Email and country stay in
// cleartext because they are used for lookups and reporting.
func piiFields(c *model.Customer) []piiField {
	return []piiField{
		{"customer.firstName", &c.FirstName},
		{"customer.lastName", &c.LastName},
		{"customer.phone", &c.Phone},
		{"customer.address.street", &c.Address.Street},
		{"customer.address.city", &c.Address.City},
		{"customer.address.state", &c.Address.State},
		{"customer.address.postalCode", &c.Address.PostalCode},
	}
}

// encode writes fields that failed to decrypt on load back unchanged, so a
// save never wraps a stored token in a second layer of encryption.
func (c documentCodec) encode(order *model.Order) ([]byte, error) {
	doc := *order
	doc.DecryptionFailures = nil

	for _, f := range piiFields(&doc.Customer) {
		if slices.Contains(order.DecryptionFailures, f.name) {
			continue
		}
		token, err := c.cipher.Encrypt(*f.value)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt %s: %w", f.name, err)
		}
		*f.value = token
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order document: %w", err)
	}
	return data, nil
}

// decode never fails on a bad PII token; the field keeps its stored value and
// is listed in DecryptionFailures.
func (c documentCodec) decode(data []byte) (*model.Order, error) {
	var order model.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("failed to decode order document: %w", err)
	}

	for _, f := range piiFields(&order.Customer) {
		plain, ok := c.cipher.Decrypt(*f.value)
		if !ok {
			order.DecryptionFailures = append(order.DecryptionFailures, f.name)
		}
		*f.value = plain
	}

	return &order, nil
}
