package topology

import "strings"

// Canonicalization strips the runtime/statistical fields the broker reports
// alongside declared configuration, so that two topologies can be compared
// structurally. Cleaning is idempotent: a cleaned record passes through
// unchanged.

// internalExchangePrefix marks broker-managed exchanges (amq.direct,
// amq.topic, ...) that are not user-declared topology.
const internalExchangePrefix = "amq."

// exchangeRuntimeFields are per-exchange statistics with no bearing on
// declared configuration.
var exchangeRuntimeFields = []string{
	"message_stats",
	"message_stats_in",
	"message_stats_out",
}

// queueRuntimeFields are the runtime-observed fields the management API
// attaches to a queue. Any of these can differ between two brokers holding
// the same declared topology.
var queueRuntimeFields = []string{
	"node",
	"consumer_details",
	"consumers",
	"consumer_capacity",
	"consumer_utilisation",
	"messages",
	"messages_details",
	"messages_ready",
	"messages_ready_details",
	"messages_unacknowledged",
	"messages_unacknowledged_details",
	"message_stats",
	"memory",
	"idle_since",
	"backing_queue_status",
	"policy",
	"effective_policy_definition",
	"slave_nodes",
	"synchronised_slave_nodes",
	"state",
	"garbage_collection",
	"reductions",
	"reductions_details",
}

// bindingRuntimeFields holds the broker-side identity hash, which is not
// declared configuration.
var bindingRuntimeFields = []string{
	"properties_key",
}

func cleanRecord(r Record, entity string, required []string, strip []string) (Record, error) {
	for _, field := range required {
		if _, ok := r.String(field); !ok {
			return nil, &StructuralError{Entity: entity, Field: field}
		}
	}
	out := r.clone()
	for _, field := range strip {
		delete(out, field)
	}
	return out, nil
}

// CleanExchange strips message-rate statistics from a raw exchange record.
func CleanExchange(r Record) (Record, error) {
	return cleanRecord(r, "exchange", []string{"name"}, exchangeRuntimeFields)
}

// CleanQueue strips all runtime-observed fields from a raw queue record.
// Consumer counts needed by the anomaly checks must be captured before this
// runs; see source.LoadBroker.
func CleanQueue(r Record) (Record, error) {
	return cleanRecord(r, "queue", []string{"name"}, queueRuntimeFields)
}

// CleanBinding strips the broker-internal properties key from a raw binding
// record. An empty source is legal here (it is filtered out, not an error).
func CleanBinding(r Record) (Record, error) {
	return cleanRecord(r, "binding", []string{"source", "destination"}, bindingRuntimeFields)
}

// IsDefaultExchange reports whether the record is the unnamed default
// exchange, which is broker-managed and excluded from topology operations.
func IsDefaultExchange(r Record) bool {
	name, _ := r.String("name")
	return name == ""
}

// IsInternalExchange reports whether the exchange is broker-internal, either
// flagged as such or carrying the reserved name prefix.
func IsInternalExchange(r Record) bool {
	if r.Bool("internal") {
		return true
	}
	name, _ := r.String("name")
	return strings.HasPrefix(name, internalExchangePrefix)
}

// IsPermanent reports whether a resource survives broker restarts and client
// disconnects. Only permanent resources take part in diff and anomaly
// analysis.
func IsPermanent(r Record) bool {
	return r.Bool("durable") && !r.Bool("auto_delete")
}

// HasDeclaredSource reports whether a binding originates from a named
// exchange. Bindings from the default exchange carry no declared-topology
// meaning.
func HasDeclaredSource(r Record) bool {
	src, _ := r.String("source")
	return src != ""
}

// CanonicalExchanges filters and cleans raw exchange records: the default
// exchange and internal exchanges are dropped, then transient exchanges,
// then statistics are stripped from what remains.
func CanonicalExchanges(raw []Record) ([]Record, error) {
	out := make([]Record, 0, len(raw))
	for _, r := range raw {
		if IsDefaultExchange(r) || IsInternalExchange(r) {
			continue
		}
		if !IsPermanent(r) {
			continue
		}
		cleaned, err := CleanExchange(r)
		if err != nil {
			return nil, err
		}
		out = append(out, cleaned)
	}
	return out, nil
}

// CanonicalQueues filters and cleans raw queue records, keeping permanent
// queues only.
func CanonicalQueues(raw []Record) ([]Record, error) {
	out := make([]Record, 0, len(raw))
	for _, r := range raw {
		if !IsPermanent(r) {
			continue
		}
		cleaned, err := CleanQueue(r)
		if err != nil {
			return nil, err
		}
		out = append(out, cleaned)
	}
	return out, nil
}

// CanonicalBindings filters and cleans raw binding records, dropping
// default-exchange bindings.
func CanonicalBindings(raw []Record) ([]Record, error) {
	out := make([]Record, 0, len(raw))
	for _, r := range raw {
		cleaned, err := CleanBinding(r)
		if err != nil {
			return nil, err
		}
		if !HasDeclaredSource(cleaned) {
			continue
		}
		out = append(out, cleaned)
	}
	return out, nil
}
