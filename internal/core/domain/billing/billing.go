// Package billing models customer accounts as reported by the UISP CRM API.
package billing

import "strings"

// Contact is one contact person attached to a client account.
type Contact struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Client is the subset of a UISP client record the reminder flow needs.
type Client struct {
	ID                      int       `json:"id"`
	FirstName               string    `json:"firstName"`
	LastName                string    `json:"lastName"`
	CompanyName             string    `json:"companyName"`
	CompanyContactFirstName string    `json:"companyContactFirstName"`
	CompanyContactLastName  string    `json:"companyContactLastName"`
	IsActive                bool      `json:"isActive"`
	IsLead                  bool      `json:"isLead"`
	HasOverdueInvoice       bool      `json:"hasOverdueInvoice"`
	HasPaymentSubscription  bool      `json:"hasPaymentSubscription"`
	AccountBalance          float64   `json:"accountBalance"`
	AccountOutstanding      float64   `json:"accountOutstanding"`
	AccountCredit           float64   `json:"accountCredit"`
	Contacts                []Contact `json:"contacts"`
}

// DisplayName is the person's first and last name, falling back to the company
// contact's names for business accounts.
func (c Client) DisplayName() string {
	first := c.FirstName
	if first == "" {
		first = c.CompanyContactFirstName
	}
	last := c.LastName
	if last == "" {
		last = c.CompanyContactLastName
	}
	return strings.TrimSpace(first + " " + last)
}

// PrimaryContact returns the first contact, if any.
func (c Client) PrimaryContact() (Contact, bool) {
	if len(c.Contacts) == 0 {
		return Contact{}, false
	}
	return c.Contacts[0], true
}

// ClientFilter narrows a client list. Nil fields are ignored.
type ClientFilter struct {
	HasPaymentSubscription *bool
	IsLead                 *bool
	IsActive               *bool
	HasOverdueInvoice      *bool
}

// Match reports whether c satisfies every set field.
func (f *ClientFilter) Match(c Client) bool {
	if f == nil {
		return true
	}
	if f.HasPaymentSubscription != nil && c.HasPaymentSubscription != *f.HasPaymentSubscription {
		return false
	}
	if f.IsLead != nil && c.IsLead != *f.IsLead {
		return false
	}
	if f.IsActive != nil && c.IsActive != *f.IsActive {
		return false
	}
	if f.HasOverdueInvoice != nil && c.HasOverdueInvoice != *f.HasOverdueInvoice {
		return false
	}
	return true
}

// Apply returns the clients that match f, preserving order.
func (f *ClientFilter) Apply(clients []Client) []Client {
	if f == nil {
		return clients
	}
	out := make([]Client, 0, len(clients))
	for _, c := range clients {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}
