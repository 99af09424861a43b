package reconcile

import (
	"strings"

	"github.com/honeycarbs/talentsync/internal/domain"
)

// Attribute names accepted on inbound talent payloads, first match wins
var (
	handleKeys     = []string{"handle", "linkedinUsername", "linkedin_username", "username"}
	profileURLKeys = []string{"linkedin", "linkedinUrl", "linkedin_url", "profileUrl", "profile_url"}
	nameKeys       = []string{"name", "fullName", "full_name"}
	headlineKeys   = []string{"headline", "title"}
	emailKeys      = []string{"email"}
	phoneKeys      = []string{"phone", "phoneNumber", "phone_number"}
	locationKeys   = []string{"location", "city"}
	scoreKeys      = []string{"matchScore", "match_score", "score"}
)

type talentInput struct {
	handle     string
	name       string
	headline   string
	email      string
	phone      string
	location   string
	status     domain.TalentStatus
	matchScore *float64
	data       domain.Attrs
}

func parseTalentInput(attrs domain.Attrs) (talentInput, error) {
	in := talentInput{
		handle:   domain.NormalizeHandle(attrs.FirstString(handleKeys...)),
		name:     attrs.FirstString(nameKeys...),
		headline: attrs.FirstString(headlineKeys...),
		email:    strings.ToLower(attrs.FirstString(emailKeys...)),
		phone:    attrs.FirstString(phoneKeys...),
		location: attrs.FirstString(locationKeys...),
	}

	if in.handle == "" {
		if u := attrs.FirstString(profileURLKeys...); u != "" {
			in.handle = domain.NormalizeHandle(domain.HandleFromURL(u))
		}
	}

	for _, k := range scoreKeys {
		if f := attrs.Float(k); f != nil {
			in.matchScore = f
			break
		}
	}

	var fields []domain.FieldError
	if in.handle == "" {
		fields = append(fields, domain.FieldError{Field: "handle", Message: "profile handle is required"})
	}
	if raw := attrs.String("status"); raw != "" {
		st := domain.TalentStatus(strings.ToUpper(raw))
		if !st.Valid() {
			fields = append(fields, domain.FieldError{Field: "status", Message: "unknown talent status " + raw})
		} else {
			in.status = st
		}
	}
	if in.matchScore != nil && *in.matchScore < 0 {
		fields = append(fields, domain.FieldError{Field: "matchScore", Message: "must not be negative"})
	}
	if len(fields) > 0 {
		return talentInput{}, &domain.ValidationError{Fields: fields}
	}

	// an explicit data bag is the free-form payload; otherwise the raw payload is kept whole
	if blob := attrs.Map("data"); blob != nil {
		in.data = blob.Clone()
	} else {
		in.data = attrs.Clone()
	}
	return in, nil
}

func (in talentInput) newTalent() (domain.Talent, error) {
	if in.name == "" {
		return domain.Talent{}, domain.NewValidationError("name", "name is required to create a talent")
	}

	status := in.status
	if status == "" {
		status = domain.TalentNew
	}

	return domain.Talent{
		ID:         domain.NewID(),
		Handle:     in.handle,
		Name:       in.name,
		Headline:   in.headline,
		Email:      in.email,
		Phone:      in.phone,
		Location:   in.location,
		Data:       in.data,
		SyncStatus: domain.SyncPending,
		Status:     status,
		MatchScore: in.matchScore,
	}, nil
}

// mergeInto overlays non-empty incoming fields on existing; the data bag is a shallow union
func (in talentInput) mergeInto(existing domain.Talent) domain.Talent {
	merged := existing
	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	overlay(&merged.Name, in.name)
	overlay(&merged.Headline, in.headline)
	overlay(&merged.Email, in.email)
	overlay(&merged.Phone, in.phone)
	overlay(&merged.Location, in.location)

	if in.status != "" {
		merged.Status = in.status
	}
	if in.matchScore != nil {
		merged.MatchScore = in.matchScore
	}
	merged.Data = existing.Data.Merge(in.data)
	return merged
}
