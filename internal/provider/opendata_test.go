package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kt1928/building-monitor/internal/address"
)

func testOpenDataClient(t *testing.T, handler http.HandlerFunc) *OpenDataClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewOpenDataClient()
	c.BaseURL = srv.URL
	return c
}

func TestOpenDataClient_Recent(t *testing.T) {
	var gotPath, gotWhere, gotOrder, gotLimit string
	c := testOpenDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotWhere = r.URL.Query().Get("$where")
		gotOrder = r.URL.Query().Get("$order")
		gotLimit = r.URL.Query().Get("$limit")
		fmt.Fprint(w, `[
			{"unique_key":"ABC123","incident_address":"952A GREENE AVE","borough":"BROOKLYN",
			 "incident_zip":"11221","created_date":"2024-06-02T10:00:00.000",
			 "complaint_type":"HEAT/HOT WATER","descriptor":"ENTIRE BUILDING",
			 "agency":"HPD","status":"Open"},
			{"unique_key":"ABC122","incident_address":"952A GREENE AVE","borough":"BROOKLYN",
			 "incident_zip":"11221","created_date":"2024-06-01T09:00:00.000",
			 "complaint_type":"NOISE","descriptor":"LOUD MUSIC","agency":"NYPD","status":"Closed"}
		]`)
	})

	key := address.FeedKey{Address: "952A GREENE AVE", Borough: "BROOKLYN", ZIP: "11221"}
	complaints, err := c.Recent(context.Background(), key, 20)
	require.NoError(t, err)
	require.Len(t, complaints, 2)

	assert.Equal(t, serviceRequestsDataset, gotPath)
	assert.Equal(t, "incident_address='952A GREENE AVE' AND borough='BROOKLYN' AND incident_zip='11221'", gotWhere)
	assert.Equal(t, "created_date DESC", gotOrder)
	assert.Equal(t, "20", gotLimit)

	assert.Equal(t, "ABC123", complaints[0].IncidentID)
	assert.Equal(t, "HEAT/HOT WATER", complaints[0].Type)
	assert.Equal(t, "ABC122", complaints[1].IncidentID)
}

func TestOpenDataClient_Recent_EmptyResult(t *testing.T) {
	c := testOpenDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	complaints, err := c.Recent(context.Background(), address.FeedKey{Address: "10 MAIN ST", Borough: "BROOKLYN", ZIP: "11201"}, 20)
	require.NoError(t, err)
	assert.Empty(t, complaints)
}

func TestOpenDataClient_Recent_ServerError(t *testing.T) {
	c := testOpenDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Recent(context.Background(), address.FeedKey{Address: "10 MAIN ST", Borough: "BROOKLYN", ZIP: "11201"}, 20)
	require.Error(t, err)
}

func TestOpenDataClient_ViolationsByBIN(t *testing.T) {
	var gotPath, gotWhere string
	c := testOpenDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotWhere = r.URL.Query().Get("$where")
		fmt.Fprint(w, `[{"bin":"3039850","issue_date":"2024-03-01","violation_type":"LL6291"}]`)
	})

	violations, err := c.ViolationsByBIN(context.Background(), "3039850")
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, dobViolationsDataset, gotPath)
	assert.Equal(t, "bin='3039850'", gotWhere)
	assert.Equal(t, "LL6291", violations[0].ViolationType)
}

func TestOpenDataClient_ECBViolationsByBIN(t *testing.T) {
	var gotPath string
	c := testOpenDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `[]`)
	})

	_, err := c.ECBViolationsByBIN(context.Background(), "3039850")
	require.NoError(t, err)
	assert.Equal(t, ecbViolationsDataset, gotPath)
}
