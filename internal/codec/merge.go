package codec

import "pouch/internal/domain"

// MergeTopic overlays the fields present on in over base and returns the
// merged topic. Fields absent from in (nil pointers, nil blobs, nil slices)
// keep their stored value: patch semantics, not a full replace.
//
// base may be nil, in which case in is returned as-is.
func MergeTopic(base, in *domain.Topic) *domain.Topic {
	if base == nil {
		return in
	}
	out := *base
	out.Name = in.Name
	out.Unconfirmed = in.Unconfirmed

	if in.CreatedAt != nil {
		out.CreatedAt = in.CreatedAt
	}
	if in.UpdatedAt != nil {
		out.UpdatedAt = in.UpdatedAt
	}
	if in.TouchedAt != nil {
		out.TouchedAt = in.TouchedAt
	}
	if in.SeqID != nil {
		out.SeqID = in.SeqID
	}
	if in.ReadSeqID != nil {
		out.ReadSeqID = in.ReadSeqID
	}
	if in.RecvSeqID != nil {
		out.RecvSeqID = in.RecvSeqID
	}
	if in.ClearID != nil {
		out.ClearID = in.ClearID
	}
	if in.DefAcs != nil {
		out.DefAcs = in.DefAcs
	}
	if in.Creds != nil {
		out.Creds = in.Creds
	}
	if in.Public != nil {
		out.Public = in.Public
	}
	if in.Trusted != nil {
		out.Trusted = in.Trusted
	}
	if in.Private != nil {
		out.Private = in.Private
	}
	if in.Aux != nil {
		out.Aux = in.Aux
	}
	if in.Deleted != nil {
		out.Deleted = in.Deleted
	}
	if in.Tags != nil {
		out.Tags = in.Tags
	}
	if in.Acs != nil {
		out.Acs = in.Acs
	}
	return &out
}

// MergeSubscription overlays the fields present on in over base, with the
// same patch semantics as MergeTopic. Empty strings count as absent.
func MergeSubscription(base, in *domain.Subscription) *domain.Subscription {
	if base == nil {
		return in
	}
	out := *base
	out.Topic = in.Topic
	out.UID = in.UID

	if in.UpdatedAt != nil {
		out.UpdatedAt = in.UpdatedAt
	}
	if in.Mode != "" {
		out.Mode = in.Mode
	}
	if in.ReadSeqID != nil {
		out.ReadSeqID = in.ReadSeqID
	}
	if in.RecvSeqID != nil {
		out.RecvSeqID = in.RecvSeqID
	}
	if in.ClearID != nil {
		out.ClearID = in.ClearID
	}
	if in.LastSeen != nil {
		out.LastSeen = in.LastSeen
	}
	if in.UserAgent != "" {
		out.UserAgent = in.UserAgent
	}
	return &out
}
