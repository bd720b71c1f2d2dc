package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avatarctic/docflow/internal/core/domain/billing"
)

func TestClient_DisplayName(t *testing.T) {
	assert.Equal(t, "Jane Doe", billing.Client{FirstName: "Jane", LastName: "Doe"}.DisplayName())
	assert.Equal(t, "Ann Smith", billing.Client{CompanyContactFirstName: "Ann", CompanyContactLastName: "Smith"}.DisplayName())
	assert.Equal(t, "Jane Smith", billing.Client{FirstName: "Jane", CompanyContactLastName: "Smith"}.DisplayName())
	assert.Equal(t, "", billing.Client{}.DisplayName())
}

func TestClientFilter_Apply(t *testing.T) {
	yes, no := true, false
	clients := []billing.Client{
		{ID: 1, IsActive: true, HasOverdueInvoice: true},
		{ID: 2, IsActive: true},
		{ID: 3, IsLead: true},
	}

	var nilFilter *billing.ClientFilter
	assert.Len(t, nilFilter.Apply(clients), 3)

	got := (&billing.ClientFilter{IsActive: &yes, HasOverdueInvoice: &no}).Apply(clients)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, got[0].ID)

	got = (&billing.ClientFilter{IsLead: &yes}).Apply(clients)
	assert.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ID)
}
