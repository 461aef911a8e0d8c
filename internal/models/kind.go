package models

// RecordKind identifies one of the administrative record families managed by
// the archive console.
type RecordKind string

const (
	KindResident     RecordKind = "resident"
	KindComplaint    RecordKind = "complaint"
	KindVehicle      RecordKind = "vehicle"
	KindMaintenance  RecordKind = "maintenance"
	KindBilling      RecordKind = "billing"
	KindVisitor      RecordKind = "visitor"
	KindAnnouncement RecordKind = "announcement"
)

// KindDescriptor captures everything kind-specific that the lifecycle engine,
// name resolver and filter need. Adding a record family means adding one
// descriptor here; the engine itself stays untouched.
type KindDescriptor struct {
	Kind  RecordKind
	Label string

	// ActiveCollection and ArchiveCollection name the two document
	// collections a record of this kind can live in. A record is in exactly
	// one of them at any time.
	ActiveCollection  string
	ArchiveCollection string

	// ActorRefField names the payload field holding the submitting actor's
	// user ID. Empty values are tolerated on legacy records.
	ActorRefField string

	// ContactFields are payload fields tried in order when the actor lookup
	// cannot produce a display name.
	ContactFields []string

	// SearchFields are payload fields included in free-text matching, next to
	// the resolved actor name.
	SearchFields []string

	// PrimarySortField orders active listings. SecondarySortField, when set,
	// is the fallback ordering tried if the primary ordered query fails.
	PrimarySortField   string
	SecondarySortField string

	// KeepIDOnRestore preserves the document ID when a record moves back to
	// the active collection. Residents keep their identity because billing
	// and vehicle records reference it; other kinds accept a generated ID.
	KeepIDOnRestore bool
}

var kindDescriptors = []KindDescriptor{
	{
		Kind:               KindResident,
		Label:              "resident",
		ActiveCollection:   "residents",
		ArchiveCollection:  "residents_archive",
		ActorRefField:      "accountId",
		ContactFields:      []string{"email", "phone"},
		SearchFields:       []string{"fullName", "unitNumber", "email", "phone", "status"},
		PrimarySortField:   FieldCreatedAt,
		SecondarySortField: "fullName",
		KeepIDOnRestore:    true,
	},
	{
		Kind:               KindComplaint,
		Label:              "complaint",
		ActiveCollection:   "complaints",
		ArchiveCollection:  "complaints_archive",
		ActorRefField:      "reporterId",
		ContactFields:      []string{"reporterPhone"},
		SearchFields:       []string{"title", "description", "category", "status"},
		PrimarySortField:   FieldCreatedAt,
		SecondarySortField: FieldUpdatedAt,
	},
	{
		Kind:               KindVehicle,
		Label:              "vehicle registration",
		ActiveCollection:   "vehicle_registrations",
		ArchiveCollection:  "vehicle_registrations_archive",
		ActorRefField:      "ownerId",
		ContactFields:      []string{"ownerPhone"},
		SearchFields:       []string{"plateNumber", "brand", "model", "color", "status"},
		PrimarySortField:   FieldCreatedAt,
		SecondarySortField: "plateNumber",
	},
	{
		Kind:               KindMaintenance,
		Label:              "maintenance ticket",
		ActiveCollection:   "maintenance_tickets",
		ArchiveCollection:  "maintenance_tickets_archive",
		ActorRefField:      "requesterId",
		ContactFields:      []string{"requesterPhone"},
		SearchFields:       []string{"title", "description", "location", "priority", "status"},
		PrimarySortField:   FieldCreatedAt,
		SecondarySortField: FieldUpdatedAt,
	},
	{
		Kind:               KindBilling,
		Label:              "utility billing",
		ActiveCollection:   "utility_billings",
		ArchiveCollection:  "utility_billings_archive",
		ActorRefField:      "residentId",
		SearchFields:       []string{"period", "unitNumber", "status"},
		PrimarySortField:   "period",
		SecondarySortField: FieldCreatedAt,
	},
	{
		Kind:               KindVisitor,
		Label:              "visitor pass",
		ActiveCollection:   "visitor_passes",
		ArchiveCollection:  "visitor_passes_archive",
		ActorRefField:      "hostId",
		ContactFields:      []string{"hostPhone"},
		SearchFields:       []string{"visitorName", "purpose", "unitNumber", "status"},
		PrimarySortField:   "visitDate",
		SecondarySortField: FieldCreatedAt,
	},
	{
		Kind:              KindAnnouncement,
		Label:             "announcement",
		ActiveCollection:  "announcements",
		ArchiveCollection: "announcements_archive",
		ActorRefField:     "authorId",
		SearchFields:      []string{"title", "body", "audience"},
		PrimarySortField:  "publishedAt",
	},
}

var kindIndex = func() map[RecordKind]KindDescriptor {
	idx := make(map[RecordKind]KindDescriptor, len(kindDescriptors))
	for _, desc := range kindDescriptors {
		idx[desc.Kind] = desc
	}
	return idx
}()

// CollectionFor returns the collection holding this kind's records in the
// given state.
func (d KindDescriptor) CollectionFor(state RecordState) string {
	if state == StateArchived {
		return d.ArchiveCollection
	}
	return d.ActiveCollection
}

// Kinds returns descriptors for every registered record kind in stable order.
func Kinds() []KindDescriptor {
	out := make([]KindDescriptor, len(kindDescriptors))
	copy(out, kindDescriptors)
	return out
}

// DescriptorFor looks up the descriptor for a kind.
func DescriptorFor(kind RecordKind) (KindDescriptor, bool) {
	desc, ok := kindIndex[kind]
	return desc, ok
}

// ParseKind maps a URL slug onto a registered kind.
func ParseKind(raw string) (KindDescriptor, bool) {
	return DescriptorFor(RecordKind(raw))
}
