package salesforce

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLead(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var capturedObject string
		var capturedFields map[string]any
		mc := &mockClient{
			insertOneFn: func(_ context.Context, sObject string, record map[string]any) (string, error) {
				capturedObject = sObject
				capturedFields = record
				return "00QNEW", nil
			},
		}

		fields := map[string]any{"Company": "Acme Electric", "Phone": "5125551234"}
		id, err := CreateLead(context.Background(), mc, fields)
		require.NoError(t, err)
		assert.Equal(t, "00QNEW", id)
		assert.Equal(t, "Lead", capturedObject)
		assert.Equal(t, "Acme Electric", capturedFields["Company"])
		assert.Equal(t, "Unknown", capturedFields["LastName"])
	})

	t.Run("keeps provided last name", func(t *testing.T) {
		var capturedFields map[string]any
		mc := &mockClient{
			insertOneFn: func(_ context.Context, _ string, record map[string]any) (string, error) {
				capturedFields = record
				return "00QNEW", nil
			},
		}

		_, err := CreateLead(context.Background(), mc, map[string]any{
			"Company": "Acme Electric", "LastName": "Nguyen",
		})
		require.NoError(t, err)
		assert.Equal(t, "Nguyen", capturedFields["LastName"])
	})

	t.Run("missing company", func(t *testing.T) {
		mc := &mockClient{}
		_, err := CreateLead(context.Background(), mc, map[string]any{"Phone": "5125551234"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Company is required")
	})

	t.Run("propagates error", func(t *testing.T) {
		mc := &mockClient{
			insertOneFn: func(_ context.Context, _ string, _ map[string]any) (string, error) {
				return "", errors.New("api error")
			},
		}
		_, err := CreateLead(context.Background(), mc, map[string]any{"Company": "Acme"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "create lead")
	})
}

func TestUpdateLead(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var capturedID string
		mc := &mockClient{
			updateOneFn: func(_ context.Context, sObject string, id string, _ map[string]any) error {
				assert.Equal(t, "Lead", sObject)
				capturedID = id
				return nil
			},
		}

		err := UpdateLead(context.Background(), mc, "00Q123", map[string]any{"Rating": "Hot"})
		require.NoError(t, err)
		assert.Equal(t, "00Q123", capturedID)
	})

	t.Run("empty id", func(t *testing.T) {
		err := UpdateLead(context.Background(), &mockClient{}, "", map[string]any{"Rating": "Hot"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "lead id is required")
	})

	t.Run("no fields", func(t *testing.T) {
		err := UpdateLead(context.Background(), &mockClient{}, "00Q123", nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no fields")
	})
}

func TestFindLeadByPhone(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mc := &mockClient{
			queryFn: func(_ context.Context, soql string, out any) error {
				assert.Contains(t, soql, "FROM Lead WHERE Phone = '5125551234'")
				leads := out.(*[]Lead)
				*leads = []Lead{{ID: "00Q123", Company: "Acme Electric", Phone: "5125551234"}}
				return nil
			},
		}

		lead, err := FindLeadByPhone(context.Background(), mc, "5125551234")
		require.NoError(t, err)
		require.NotNil(t, lead)
		assert.Equal(t, "00Q123", lead.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mc := &mockClient{}
		lead, err := FindLeadByPhone(context.Background(), mc, "0000000000")
		require.NoError(t, err)
		assert.Nil(t, lead)
	})

	t.Run("escapes quotes", func(t *testing.T) {
		var capturedSoql string
		mc := &mockClient{
			queryFn: func(_ context.Context, soql string, _ any) error {
				capturedSoql = soql
				return nil
			},
		}

		_, err := FindLeadByCompany(context.Background(), mc, "O'Brien Electric")
		require.NoError(t, err)
		assert.Contains(t, capturedSoql, `O\'Brien Electric`)
	})
}
