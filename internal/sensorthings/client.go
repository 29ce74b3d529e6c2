package sensorthings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// thingExpand pulls locations, datastreams and the single most recent
// observation per datastream in one round trip.
const thingExpand = "Locations($select=location)," +
	"Datastreams($select=name,description,unitOfMeasurement,phenomenonTime,resultTime;" +
	"$expand=Sensor($select=name,description)," +
	"ObservedProperty($select=name,description)," +
	"Observations($orderby=phenomenonTime desc;$top=1;$select=phenomenonTime,result))"

// Client talks to a SensorThings-compatible sensor network service.
type Client struct {
	base   string
	client *http.Client
}

// NewClient builds a client for the given base URL (".../v1.1").
func NewClient(base string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(base, "/"), client: client}
}

// FetchThing retrieves the full expanded payload for one device.
func (c *Client) FetchThing(ctx context.Context, id int64) (Thing, error) {
	u := c.base + "/Things(" + strconv.FormatInt(id, 10) + ")?$expand=" + url.QueryEscape(thingExpand)

	var thing Thing
	if err := c.getJSON(ctx, u, &thing); err != nil {
		return Thing{}, fmt.Errorf("fetch thing %d: %w", id, err)
	}
	return thing, nil
}

// FetchCatalog retrieves id, name and description of every device known to
// the sensor network.
func (c *Client) FetchCatalog(ctx context.Context) ([]CatalogThing, error) {
	u := c.base + "/Things?$select=" + url.QueryEscape("@iot.id,name,description")

	var payload catalogResponse
	if err := c.getJSON(ctx, u, &payload); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	return payload.Value, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
