package topology

import "encoding/json"

// Typed model of a declared topology. Each entity keeps its configuration
// fields strongly typed plus an opaque Extra map for broker-specific fields
// that survived canonicalization, so unknown extensions round-trip through
// snapshots without being enumerated here.

const (
	DestinationQueue    = "queue"
	DestinationExchange = "exchange"
)

type Exchange struct {
	Name       string
	VHost      string
	Type       string
	Durable    bool
	AutoDelete bool
	Internal   bool
	Arguments  map[string]any
	Extra      map[string]any
}

type Queue struct {
	Name       string
	VHost      string
	Durable    bool
	AutoDelete bool
	Arguments  map[string]any
	Extra      map[string]any
}

type Binding struct {
	Source          string
	Destination     string
	DestinationType string
	RoutingKey      string
	VHost           string
	Arguments       map[string]any
	Extra           map[string]any
}

// Topology is the container for one broker's declared resources. Order of
// the slices is irrelevant for equality; it only matters for deterministic
// rendering.
type Topology struct {
	Exchanges []Exchange `json:"exchanges"`
	Queues    []Queue    `json:"queues"`
	Bindings  []Binding  `json:"bindings"`
}

// MessageTTL returns the x-message-ttl argument, if present.
func (q Queue) MessageTTL() (int64, bool) {
	switch v := q.Arguments["x-message-ttl"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

// DeadLetterExchange returns the x-dead-letter-exchange argument, if present.
func (q Queue) DeadLetterExchange() (string, bool) {
	s, ok := q.Arguments["x-dead-letter-exchange"].(string)
	return s, ok && s != ""
}

func takeString(r Record, field string) string {
	s, _ := r.String(field)
	delete(r, field)
	return s
}

func takeBool(r Record, field string) bool {
	b := r.Bool(field)
	delete(r, field)
	return b
}

func takeArguments(r Record) map[string]any {
	args, _ := r["arguments"].(map[string]any)
	delete(r, "arguments")
	if args == nil {
		args = map[string]any{}
	}
	return args
}

func extraOrNil(r Record) map[string]any {
	if len(r) == 0 {
		return nil
	}
	return r
}

// ExchangeFromRecord builds a typed exchange from a cleaned record.
func ExchangeFromRecord(r Record) (Exchange, error) {
	if _, ok := r.String("name"); !ok {
		return Exchange{}, &StructuralError{Entity: "exchange", Field: "name"}
	}
	rest := r.clone()
	return Exchange{
		Name:       takeString(rest, "name"),
		VHost:      takeString(rest, "vhost"),
		Type:       takeString(rest, "type"),
		Durable:    takeBool(rest, "durable"),
		AutoDelete: takeBool(rest, "auto_delete"),
		Internal:   takeBool(rest, "internal"),
		Arguments:  takeArguments(rest),
		Extra:      extraOrNil(rest),
	}, nil
}

// QueueFromRecord builds a typed queue from a cleaned record.
func QueueFromRecord(r Record) (Queue, error) {
	if _, ok := r.String("name"); !ok {
		return Queue{}, &StructuralError{Entity: "queue", Field: "name"}
	}
	rest := r.clone()
	return Queue{
		Name:       takeString(rest, "name"),
		VHost:      takeString(rest, "vhost"),
		Durable:    takeBool(rest, "durable"),
		AutoDelete: takeBool(rest, "auto_delete"),
		Arguments:  takeArguments(rest),
		Extra:      extraOrNil(rest),
	}, nil
}

// BindingFromRecord builds a typed binding from a cleaned record.
func BindingFromRecord(r Record) (Binding, error) {
	for _, field := range []string{"source", "destination"} {
		if _, ok := r.String(field); !ok {
			return Binding{}, &StructuralError{Entity: "binding", Field: field}
		}
	}
	rest := r.clone()
	b := Binding{
		Source:          takeString(rest, "source"),
		Destination:     takeString(rest, "destination"),
		DestinationType: takeString(rest, "destination_type"),
		RoutingKey:      takeString(rest, "routing_key"),
		VHost:           takeString(rest, "vhost"),
		Arguments:       takeArguments(rest),
		Extra:           extraOrNil(rest),
	}
	if b.DestinationType == "" {
		b.DestinationType = DestinationQueue
	}
	return b, nil
}

// FromRecords builds a Topology from already canonical record sequences.
func FromRecords(exchanges, queues, bindings []Record) (*Topology, error) {
	tp := &Topology{
		Exchanges: make([]Exchange, 0, len(exchanges)),
		Queues:    make([]Queue, 0, len(queues)),
		Bindings:  make([]Binding, 0, len(bindings)),
	}
	for _, r := range exchanges {
		ex, err := ExchangeFromRecord(r)
		if err != nil {
			return nil, err
		}
		tp.Exchanges = append(tp.Exchanges, ex)
	}
	for _, r := range queues {
		q, err := QueueFromRecord(r)
		if err != nil {
			return nil, err
		}
		tp.Queues = append(tp.Queues, q)
	}
	for _, r := range bindings {
		b, err := BindingFromRecord(r)
		if err != nil {
			return nil, err
		}
		tp.Bindings = append(tp.Bindings, b)
	}
	return tp, nil
}

func marshalWithExtra(fields map[string]any, extra map[string]any) ([]byte, error) {
	out := make(map[string]any, len(fields)+len(extra))
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}

func (e Exchange) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(map[string]any{
		"name":        e.Name,
		"vhost":       e.VHost,
		"type":        e.Type,
		"durable":     e.Durable,
		"auto_delete": e.AutoDelete,
		"internal":    e.Internal,
		"arguments":   e.Arguments,
	}, e.Extra)
}

func (e *Exchange) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	ex, err := ExchangeFromRecord(r)
	if err != nil {
		return err
	}
	*e = ex
	return nil
}

func (q Queue) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(map[string]any{
		"name":        q.Name,
		"vhost":       q.VHost,
		"durable":     q.Durable,
		"auto_delete": q.AutoDelete,
		"arguments":   q.Arguments,
	}, q.Extra)
}

func (q *Queue) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	qq, err := QueueFromRecord(r)
	if err != nil {
		return err
	}
	*q = qq
	return nil
}

func (b Binding) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(map[string]any{
		"source":           b.Source,
		"destination":      b.Destination,
		"destination_type": b.DestinationType,
		"routing_key":      b.RoutingKey,
		"vhost":            b.VHost,
		"arguments":        b.Arguments,
	}, b.Extra)
}

func (b *Binding) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	bb, err := BindingFromRecord(r)
	if err != nil {
		return err
	}
	*b = bb
	return nil
}

// ExchangeKey and QueueKey identify a resource by name; names are unique per
// vhost within their own namespace.
func ExchangeKey(e Exchange) (string, error) {
	if e.Name == "" {
		return "", &StructuralError{Entity: "exchange", Field: "name"}
	}
	return e.Name, nil
}

func QueueKey(q Queue) (string, error) {
	if q.Name == "" {
		return "", &StructuralError{Entity: "queue", Field: "name"}
	}
	return q.Name, nil
}

// BindingKey identifies a binding by its endpoints. The routing key is
// deliberately excluded so a routing-key change surfaces as a modified
// binding instead of a remove/add pair.
func BindingKey(b Binding) (string, error) {
	if b.Source == "" {
		return "", &StructuralError{Entity: "binding", Field: "source"}
	}
	if b.Destination == "" {
		return "", &StructuralError{Entity: "binding", Field: "destination"}
	}
	return b.Source + "|" + b.Destination + "|" + b.DestinationType, nil
}
