package sensorthings

// Thing models the expanded device payload returned by the sensor network.
type Thing struct {
	ID          int64        `json:"@iot.id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Locations   []Location   `json:"Locations"`
	Datastreams []Datastream `json:"Datastreams"`
}

// Location wraps a GeoJSON point; coordinates are [longitude, latitude].
type Location struct {
	Location struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"location"`
}

// Datastream is one measured quantity with its most recent observations.
type Datastream struct {
	Name              string            `json:"name"`
	Description       string            `json:"description"`
	UnitOfMeasurement UnitOfMeasurement `json:"unitOfMeasurement"`
	Sensor            SensorMeta        `json:"Sensor"`
	ObservedProperty  ObservedProperty  `json:"ObservedProperty"`
	Observations      []Observation     `json:"Observations"`
}

// UnitOfMeasurement describes the datastream's unit triple.
type UnitOfMeasurement struct {
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	Definition string `json:"definition"`
}

// SensorMeta is the physical-sensor descriptor attached to a datastream.
type SensorMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ObservedProperty is the free-text label of what a datastream measures.
type ObservedProperty struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Observation carries a phenomenon time and a result of arbitrary JSON type.
// Non-numeric results are dropped during normalization.
type Observation struct {
	PhenomenonTime string `json:"phenomenonTime"`
	Result         any    `json:"result"`
}

// CatalogThing is the slim projection returned by the catalog listing.
type CatalogThing struct {
	ID          int64  `json:"@iot.id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type catalogResponse struct {
	Value []CatalogThing `json:"value"`
}
