package sqlite

import (
	"database/sql"
	"fmt"

	"pouch/internal/codec"
	"pouch/internal/domain"
)

// ============================================================================
// Topic Row Scanner
// ============================================================================

// topicRow holds all columns from a topic query for scanning
type topicRow struct {
	Name      string
	CreatedAt sql.NullString
	UpdatedAt sql.NullString
	TouchedAt sql.NullString
	Seq       sql.NullInt64
	ReadSeq   sql.NullInt64
	RecvSeq   sql.NullInt64
	ClearID   sql.NullInt64
	DefAcs    sql.NullString
	Creds     sql.NullString
	Public    sql.NullString
	Trusted   sql.NullString
	Private   sql.NullString
	Aux       sql.NullString
	Deleted   sql.NullInt64
	Tags      sql.NullString
	AcsGiven  sql.NullString
	AcsWant   sql.NullString
	AcsMode   sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match topicColumns order exactly.
func (r *topicRow) scanArgs() []any {
	return []any{
		&r.Name,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.TouchedAt,
		&r.Seq,
		&r.ReadSeq,
		&r.RecvSeq,
		&r.ClearID,
		&r.DefAcs,
		&r.Creds,
		&r.Public,
		&r.Trusted,
		&r.Private,
		&r.Aux,
		&r.Deleted,
		&r.Tags,
		&r.AcsGiven,
		&r.AcsWant,
		&r.AcsMode,
	}
}

// toDomain converts the scanned row to a domain.Topic and recomputes the
// derived unread counter.
func (r *topicRow) toDomain() *domain.Topic {
	t := &domain.Topic{
		Name:      r.Name,
		CreatedAt: codec.DecodeTime(r.CreatedAt),
		UpdatedAt: codec.DecodeTime(r.UpdatedAt),
		TouchedAt: codec.DecodeTime(r.TouchedAt),
		SeqID:     codec.DecodeInt(r.Seq),
		ReadSeqID: codec.DecodeInt(r.ReadSeq),
		RecvSeqID: codec.DecodeInt(r.RecvSeq),
		ClearID:   codec.DecodeInt(r.ClearID),
		Public:    codec.DecodeBlob(r.Public),
		Trusted:   codec.DecodeBlob(r.Trusted),
		Private:   codec.DecodeBlob(r.Private),
	}

	if deleted := codec.DecodeBool(r.Deleted); deleted {
		t.Deleted = domain.Bool(true)
	}
	codec.DecodeInto(r.DefAcs, &t.DefAcs)
	codec.DecodeInto(r.Creds, &t.Creds)
	codec.DecodeInto(r.Aux, &t.Aux)
	codec.DecodeInto(r.Tags, &t.Tags)

	if r.AcsGiven.Valid || r.AcsWant.Valid || r.AcsMode.Valid {
		t.Acs = &domain.AccessState{
			Given: codec.DecodeString(r.AcsGiven),
			Want:  codec.DecodeString(r.AcsWant),
			Mode:  codec.DecodeString(r.AcsMode),
		}
	}

	t.ComputeUnread()
	return t
}

// topicColumns is the SELECT column list for topic queries
const topicColumns = `name, created_at, updated_at, touched_at, seq, read_seq,
	recv_seq, clear_id, defacs, creds, public, trusted, private, aux,
	deleted, tags, acs_given, acs_want, acs_mode`

// topicInsertArgs prepares arguments for topic INSERT OR REPLACE.
// Order matches topicColumns.
func topicInsertArgs(t *domain.Topic) ([]any, error) {
	defacs, err := codec.EncodeBlob(blobOrNil(t.DefAcs != nil, t.DefAcs))
	if err != nil {
		return nil, fmt.Errorf("marshal defacs: %w", err)
	}
	creds, err := codec.EncodeBlob(blobOrNil(t.Creds != nil, t.Creds))
	if err != nil {
		return nil, fmt.Errorf("marshal creds: %w", err)
	}
	public, err := codec.EncodeBlob(t.Public)
	if err != nil {
		return nil, fmt.Errorf("marshal public: %w", err)
	}
	trusted, err := codec.EncodeBlob(t.Trusted)
	if err != nil {
		return nil, fmt.Errorf("marshal trusted: %w", err)
	}
	private, err := codec.EncodeBlob(t.Private)
	if err != nil {
		return nil, fmt.Errorf("marshal private: %w", err)
	}
	aux, err := codec.EncodeBlob(blobOrNil(t.Aux != nil, t.Aux))
	if err != nil {
		return nil, fmt.Errorf("marshal aux: %w", err)
	}
	tags, err := codec.EncodeBlob(blobOrNil(t.Tags != nil, t.Tags))
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	var given, want, mode sql.NullString
	if t.Acs != nil {
		given = codec.EncodeString(t.Acs.Given)
		want = codec.EncodeString(t.Acs.Want)
		mode = codec.EncodeString(t.Acs.Mode)
	}

	return []any{
		t.Name,
		codec.EncodeTime(t.CreatedAt),
		codec.EncodeTime(t.UpdatedAt),
		codec.EncodeTime(t.TouchedAt),
		codec.EncodeInt(t.SeqID),
		codec.EncodeInt(t.ReadSeqID),
		codec.EncodeInt(t.RecvSeqID),
		codec.EncodeInt(t.ClearID),
		defacs,
		creds,
		public,
		trusted,
		private,
		aux,
		codec.EncodeBool(t.IsDeleted()),
		tags,
		given,
		want,
		mode,
	}, nil
}

// blobOrNil keeps typed nil slices/pointers out of EncodeBlob, which only
// special-cases untyped nil.
func blobOrNil(present bool, v any) any {
	if !present {
		return nil
	}
	return v
}

// ============================================================================
// Subscription Row Scanner
// ============================================================================

// subRow holds all columns from a subscription query for scanning
type subRow struct {
	Topic     string
	UID       string
	UpdatedAt sql.NullString
	Mode      sql.NullString
	ReadSeq   sql.NullInt64
	RecvSeq   sql.NullInt64
	ClearID   sql.NullInt64
	LastSeen  sql.NullString
	UserAgent sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match subColumns order exactly.
func (r *subRow) scanArgs() []any {
	return []any{
		&r.Topic,
		&r.UID,
		&r.UpdatedAt,
		&r.Mode,
		&r.ReadSeq,
		&r.RecvSeq,
		&r.ClearID,
		&r.LastSeen,
		&r.UserAgent,
	}
}

// toDomain converts the scanned row to a domain.Subscription
func (r *subRow) toDomain() *domain.Subscription {
	return &domain.Subscription{
		Topic:     r.Topic,
		UID:       r.UID,
		UpdatedAt: codec.DecodeTime(r.UpdatedAt),
		Mode:      codec.DecodeString(r.Mode),
		ReadSeqID: codec.DecodeInt(r.ReadSeq),
		RecvSeqID: codec.DecodeInt(r.RecvSeq),
		ClearID:   codec.DecodeInt(r.ClearID),
		LastSeen:  codec.DecodeTime(r.LastSeen),
		UserAgent: codec.DecodeString(r.UserAgent),
	}
}

// subColumns is the SELECT column list for subscription queries
const subColumns = `topic, uid, updated_at, mode, read_seq, recv_seq,
	clear_id, last_seen, user_agent`

// subInsertArgs prepares arguments for subscription INSERT OR REPLACE.
// Order matches subColumns.
func subInsertArgs(sub *domain.Subscription) []any {
	return []any{
		sub.Topic,
		sub.UID,
		codec.EncodeTime(sub.UpdatedAt),
		codec.EncodeString(sub.Mode),
		codec.EncodeInt(sub.ReadSeqID),
		codec.EncodeInt(sub.RecvSeqID),
		codec.EncodeInt(sub.ClearID),
		codec.EncodeTime(sub.LastSeen),
		codec.EncodeString(sub.UserAgent),
	}
}

// ============================================================================
// Message Row Scanner
// ============================================================================

// msgRow holds all columns from a message query for scanning
type msgRow struct {
	Topic     string
	Seq       int
	CreatedAt sql.NullString
	Status    sql.NullInt64
	Sender    sql.NullString
	Head      sql.NullString
	Content   sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match msgColumns order exactly.
func (r *msgRow) scanArgs() []any {
	return []any{
		&r.Topic,
		&r.Seq,
		&r.CreatedAt,
		&r.Status,
		&r.Sender,
		&r.Head,
		&r.Content,
	}
}

// toDomain converts the scanned row to a domain.Message
func (r *msgRow) toDomain() *domain.Message {
	m := &domain.Message{
		Topic:     r.Topic,
		SeqID:     r.Seq,
		CreatedAt: codec.DecodeTime(r.CreatedAt),
		From:      codec.DecodeString(r.Sender),
		Content:   codec.DecodeBlob(r.Content),
	}
	if r.Status.Valid {
		m.Status = int(r.Status.Int64)
	}
	codec.DecodeInto(r.Head, &m.Head)
	return m
}

// msgColumns is the SELECT column list for message queries
const msgColumns = `topic, seq, created_at, status, sender, head, content`

// msgInsertArgs prepares arguments for message INSERT OR REPLACE.
// Order matches msgColumns.
func msgInsertArgs(m *domain.Message) ([]any, error) {
	head, err := codec.EncodeBlob(blobOrNil(m.Head != nil, m.Head))
	if err != nil {
		return nil, fmt.Errorf("marshal head: %w", err)
	}
	content, err := codec.EncodeBlob(m.Content)
	if err != nil {
		return nil, fmt.Errorf("marshal content: %w", err)
	}
	return []any{
		m.Topic,
		m.SeqID,
		codec.EncodeTime(m.CreatedAt),
		m.Status,
		codec.EncodeString(m.From),
		head,
		content,
	}, nil
}
