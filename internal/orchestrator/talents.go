package orchestrator

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/honeycarbs/talentsync/internal/cache"
	"github.com/honeycarbs/talentsync/internal/domain"
)

// TalentUpsert is the result of CreateOrUpdateTalent
type TalentUpsert struct {
	Talent      domain.TalentSummary       `json:"talent"`
	Created     bool                       `json:"created"`
	Application *domain.ApplicationSummary `json:"application,omitempty"`
}

// CreateOrUpdateTalent stores the captured profile locally and returns at once.
// Sync, and enrichment of new talents, continue in the background. When jobID is
// set the talent is also attached to that job.
func (o *Orchestrator) CreateOrUpdateTalent(ctx context.Context, attrs domain.Attrs, jobID string) domain.Result[TalentUpsert] {
	const op = "create_or_update_talent"
	jobID = strings.TrimSpace(jobID)

	talent, created, err := o.reconciler.UpsertTalent(ctx, attrs)
	if err != nil {
		return fail[TalentUpsert](o.log, op, err)
	}

	out := TalentUpsert{Created: created}
	if jobID != "" {
		app, _, err := o.reconciler.UpsertApplication(ctx, jobID, talent.ID, nil)
		if err != nil {
			// the talent itself is stored and still has to reach the provider
			o.cache.InvalidateByPrefix(cache.PrefixTalents)
			o.dispatcher.TriggerBackgroundSync(talent.ID, "")
			return fail[TalentUpsert](o.log, op, err)
		}
		summary := app.Summary()
		out.Application = &summary
		o.cache.Invalidate(cache.CandidatesKey(jobID))

		// the attach may have reconsidered the talent
		if reloaded, err := o.store.GetTalent(ctx, talent.ID); err == nil {
			talent = reloaded
		}
	}
	o.cache.InvalidateByPrefix(cache.PrefixTalents)
	out.Talent = talent.Summary()

	providerJobID, err := o.resolveProviderJobID(ctx, jobID)
	if err != nil {
		o.log.Warn("failed to resolve provider job, syncing without it", "job_id", jobID, "error", err)
		providerJobID = ""
	}
	o.dispatcher.TriggerBackgroundSync(talent.ID, providerJobID)

	if created {
		raw := attrs.Clone()
		talentID := talent.ID
		o.dispatcher.Go(TaskEnrichTalent, func(ctx context.Context) error {
			return o.enrichTalent(ctx, talentID, raw)
		})
	}

	o.log.Info("talent stored", "talent_id", talent.ID, "created", created, "job_id", jobID)
	return ok(out)
}

// enrichTalent applies an enrichment to the current version of the talent.
// Empty cleaned values and empty extras never overwrite; sync state is left alone.
func (o *Orchestrator) enrichTalent(ctx context.Context, talentID string, raw domain.Attrs) error {
	res, err := o.enricher.Enrich(ctx, raw)
	if err != nil {
		return fmt.Errorf("enrich talent %s: %w", talentID, err)
	}
	if res.Empty() {
		return nil
	}

	talent, err := o.store.GetTalent(ctx, talentID)
	if domain.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	fields := map[string]*string{
		"name":     &talent.Name,
		"headline": &talent.Headline,
		"location": &talent.Location,
		"email":    &talent.Email,
		"phone":    &talent.Phone,
	}
	for key, dst := range fields {
		if v := res.Cleaned.String(key); v != "" {
			*dst = v
		}
	}
	if len(res.Extras) > 0 {
		talent.Data = talent.Data.MergeNonEmpty(res.Extras)
	}

	if err := o.store.UpdateTalent(ctx, talent); err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("store enrichment of %s: %w", talentID, err)
	}
	o.cache.InvalidateByPrefix(cache.PrefixTalents)
	o.log.Debug("talent enriched", "talent_id", talentID)
	return nil
}

// TalentDeletion is the result of DeleteTalent
type TalentDeletion struct {
	TalentID   string `json:"talent_id"`
	ExternalID string `json:"external_id,omitempty"`
}

// DeleteTalent removes a talent and its applications. A synced talent is also
// deleted from the provider in the background.
func (o *Orchestrator) DeleteTalent(ctx context.Context, talentID string) domain.Result[TalentDeletion] {
	const op = "delete_talent"

	talentID = strings.TrimSpace(talentID)
	if talentID == "" {
		return fail[TalentDeletion](o.log, op, domain.NewValidationError("talentId", "talent id is required"))
	}

	talent, err := o.store.GetTalent(ctx, talentID)
	if err != nil {
		return fail[TalentDeletion](o.log, op, err)
	}
	if err := o.store.DeleteTalent(ctx, talentID); err != nil {
		return fail[TalentDeletion](o.log, op, err)
	}

	o.cache.InvalidateByPrefix(cache.PrefixTalents)
	o.cache.InvalidateByPrefix(cache.PrefixCandidates)

	if externalID := talent.ExternalID; externalID != "" {
		o.dispatcher.Go(TaskDeleteExternal, func(ctx context.Context) error {
			deleted, err := o.provider.DeleteTalent(ctx, externalID)
			if err != nil {
				return err
			}
			if !deleted {
				o.log.Info("talent already absent upstream", "external_id", externalID)
			}
			return nil
		})
	}

	o.log.Info("talent deleted", "talent_id", talentID, "external_id", talent.ExternalID)
	return ok(TalentDeletion{TalentID: talentID, ExternalID: talent.ExternalID})
}

// ListTalents returns one page of talents, best match first
func (o *Orchestrator) ListTalents(ctx context.Context, filter domain.TalentFilter) domain.Result[domain.TalentPage] {
	const op = "list_talents"

	filter = filter.Normalize()
	filter.SearchTerm = strings.TrimSpace(filter.SearchTerm)
	if filter.Status != "" {
		filter.Status = domain.TalentStatus(strings.ToUpper(string(filter.Status)))
		if !filter.Status.Valid() {
			return fail[domain.TalentPage](o.log, op, domain.NewValidationError("status", "unknown talent status "+string(filter.Status)))
		}
	}

	page, err := cached(o.cache, talentsKey(filter), func() (domain.TalentPage, error) {
		talents, total, err := o.store.ListTalents(ctx, filter)
		if err != nil {
			return domain.TalentPage{}, err
		}

		summaries := make([]domain.TalentSummary, 0, len(talents))
		for _, t := range talents {
			summaries = append(summaries, t.Summary())
		}
		return domain.TalentPage{
			Talents:      summaries,
			CurrentPage:  filter.Page,
			TotalPages:   int(math.Ceil(float64(total) / float64(filter.Limit))),
			TotalTalents: total,
		}, nil
	})
	if err != nil {
		return fail[domain.TalentPage](o.log, op, err)
	}
	return ok(page)
}

func talentsKey(f domain.TalentFilter) string {
	minScore := ""
	if f.MinScore != nil {
		minScore = strconv.FormatFloat(*f.MinScore, 'f', -1, 64)
	}
	return fmt.Sprintf("%sq=%s|min=%s|status=%s|page=%d|limit=%d",
		cache.PrefixTalents, strings.ToLower(f.SearchTerm), minScore, f.Status, f.Page, f.Limit)
}

// ProfileCheck is the result of ValidateProfile
type ProfileCheck struct {
	Handle string                `json:"handle"`
	Exists bool                  `json:"exists"`
	Talent *domain.TalentSummary `json:"talent,omitempty"`
}

// ValidateProfile reports whether the profile behind a LinkedIn URL or handle is already stored
func (o *Orchestrator) ValidateProfile(ctx context.Context, profileURL string) domain.Result[ProfileCheck] {
	const op = "validate_profile"

	handle := domain.NormalizeHandle(profileURL)
	if handle == "" || strings.ContainsAny(handle, "/:") {
		return fail[ProfileCheck](o.log, op, domain.NewValidationError("profileUrl", "could not extract a profile handle"))
	}

	talent, err := o.store.FindTalentByHandle(ctx, handle)
	switch {
	case domain.IsNotFound(err):
		return ok(ProfileCheck{Handle: handle})
	case err != nil:
		return fail[ProfileCheck](o.log, op, err)
	}

	summary := talent.Summary()
	return ok(ProfileCheck{Handle: handle, Exists: true, Talent: &summary})
}
