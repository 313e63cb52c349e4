package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/salonkit/salon-scheduler/internal/domain/booking"
	"github.com/salonkit/salon-scheduler/internal/hold"
	"github.com/salonkit/salon-scheduler/internal/httperr"
	"github.com/salonkit/salon-scheduler/internal/models"
	"github.com/salonkit/salon-scheduler/internal/policy"
	"github.com/salonkit/salon-scheduler/internal/timezone"
)

// ======================================================
// AVAILABILITY RESOLVER
// ======================================================

type GetAvailability struct {
	repo   domain.Repository
	holds  hold.Store
	policy policy.Loader

	// cache opcional de respostas; TTL zero desliga
	cache    *redis.Client
	cacheTTL time.Duration

	now func() time.Time
}

func NewGetAvailability(
	repo domain.Repository,
	holds hold.Store,
	policyLoader policy.Loader,
	cache *redis.Client,
	cacheTTL time.Duration,
) *GetAvailability {
	return &GetAvailability{
		repo:     repo,
		holds:    holds,
		policy:   policyLoader,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) ([]domain.Candidate, error) {

	if !in.To.After(in.From) {
		return nil, httperr.ErrBusiness("invalid_date_range")
	}

	if cached, ok := uc.fromCache(ctx, in); ok {
		return cached, nil
	}

	location, err := uc.repo.GetLocationByID(ctx, in.LocationID)
	if err != nil {
		return nil, httperr.ErrBusiness("location_not_found")
	}

	prefs, err := uc.policy.Load(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}

	services, err := uc.repo.ListServicesByIDs(ctx, in.LocationID, in.ServiceIDs)
	if err != nil {
		return nil, err
	}
	if len(services) != len(in.ServiceIDs) {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	eligible, err := uc.eligibleStaff(ctx, in, services)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return []domain.Candidate{}, nil
	}

	holds, err := uc.holds.List(ctx, in.LocationID)
	if err != nil {
		// hold store fora do ar: segue sem holds, eles são advisory
		holds = nil
	}

	now := uc.now().In(timezone.Location(location.Timezone))
	minBound := now.Add(time.Duration(prefs.MinAdvanceMinutes) * time.Minute)
	var maxBound time.Time
	if prefs.MaxAdvanceMinutes > 0 {
		maxBound = now.Add(time.Duration(prefs.MaxAdvanceMinutes) * time.Minute)
	}

	var candidates []domain.Candidate
	for _, staff := range eligible {
		ranges, err := uc.freeRanges(ctx, staff.ID, in, holds, minBound, maxBound, location)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, annotate(staff.ID, ranges, services)...)
	}

	// Modo degradado: quando holds ativos consumiram tudo, refaz o
	// cálculo por profissional IGNORANDO os holds — eles são advisory e
	// expiram sozinhos; melhor oferecer um slot possivelmente seguro do
	// que uma agenda vazia. Agendamentos e bloqueios continuam valendo.
	// O merge dedupe por identidade de slot: primeiro match vence, com
	// a ordem de staff fixada por ID ascendente.
	if len(in.StaffIDs) == 0 && len(candidates) == 0 && len(holds) > 0 {
		candidates, err = uc.degradedWithoutHolds(ctx, in, eligible, services, minBound, maxBound, location)
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Start.Equal(candidates[j].Start) {
			return candidates[i].StaffID < candidates[j].StaffID
		}
		return candidates[i].Start.Before(candidates[j].Start)
	})

	uc.toCache(ctx, in, candidates)

	return candidates, nil
}

// eligibleStaff: o profissional precisa estar na lista de todos os
// serviços pedidos (interseção) e cada serviço precisa ser agendável
// online. Filtro explícito de staff só restringe.
func (uc *GetAvailability) eligibleStaff(
	ctx context.Context,
	in domain.AvailabilityInput,
	services []models.Service,
) ([]models.Staff, error) {

	all, err := uc.repo.ListStaffForLocation(ctx, in.LocationID)
	if err != nil {
		return nil, err
	}

	requested := make(map[uint]bool, len(in.StaffIDs))
	for _, id := range in.StaffIDs {
		requested[id] = true
	}

	var eligible []models.Staff
	for _, staff := range all {
		if len(requested) > 0 && !requested[staff.ID] {
			continue
		}

		ok := true
		for _, svc := range services {
			if !svc.Metadata.OnlineBookable || !svc.Metadata.IsAssigned(staff.ID) {
				ok = false
				break
			}
		}
		if ok {
			eligible = append(eligible, staff)
		}
	}

	// ordem estável por ID: o merge de fallback depende dela
	sort.Slice(eligible, func(i, j int) bool {
		return eligible[i].ID < eligible[j].ID
	})

	return eligible, nil
}

// freeRanges monta a timeline livre de um profissional: janelas de
// expediente menos itens de agendamento, bloqueios e holds ativos,
// fundida em intervalos máximos e cortada na janela [min, max].
func (uc *GetAvailability) freeRanges(
	ctx context.Context,
	staffID uint,
	in domain.AvailabilityInput,
	holds []hold.Hold,
	minBound, maxBound time.Time,
	location *models.Location,
) ([]domain.Range, error) {

	loc := timezone.Location(location.Timezone)

	var working []domain.Range
	for day := in.From.In(loc); day.Before(in.To); day = day.AddDate(0, 0, 1) {
		wh, err := uc.repo.GetWorkingHours(ctx, staffID, int(day.Weekday()))
		if err != nil || wh == nil || !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
			continue
		}

		dayStart := atClock(day, wh.StartTime, loc)
		dayEnd := atClock(day, wh.EndTime, loc)
		if !dayEnd.After(dayStart) {
			continue
		}

		if wh.BreakStart != "" && wh.BreakEnd != "" {
			breakStart := atClock(day, wh.BreakStart, loc)
			breakEnd := atClock(day, wh.BreakEnd, loc)
			working = append(working,
				domain.Range{Start: dayStart, End: breakStart},
				domain.Range{Start: breakEnd, End: dayEnd},
			)
		} else {
			working = append(working, domain.Range{Start: dayStart, End: dayEnd})
		}
	}

	items, err := uc.repo.ListItemsForStaffRange(ctx, staffID, in.From, in.To)
	if err != nil {
		return nil, err
	}

	blockers, err := uc.repo.ListTimeBlockers(ctx, staffID, in.From, in.To)
	if err != nil {
		return nil, err
	}

	var busy []domain.Range
	for _, item := range items {
		busy = append(busy, domain.Range{Start: item.StartTime, End: item.EndTime})
	}
	for _, b := range blockers {
		busy = append(busy, domain.Range{Start: b.StartTime, End: b.EndTime})
	}
	for _, h := range holds {
		if h.StaffID != staffID {
			continue
		}
		busy = append(busy, domain.Range{Start: h.Start, End: h.End})
	}

	free := domain.Subtract(domain.Merge(working), busy)
	free = domain.Merge(free)

	return domain.Clamp(free, minBound, maxBound), nil
}

// annotate transforma intervalos livres em candidatos, anotando os
// serviços encadeados a partir do início da janela. Janelas menores
// que a duração total são descartadas.
func annotate(staffID uint, ranges []domain.Range, services []models.Service) []domain.Candidate {
	var total time.Duration
	for _, svc := range services {
		total += time.Duration(svc.DurationMin) * time.Minute
	}

	var out []domain.Candidate
	for _, r := range ranges {
		if r.Duration() < total {
			continue
		}

		cursor := r.Start
		timings := make([]domain.ServiceTiming, 0, len(services))
		for _, svc := range services {
			svcEnd := cursor.Add(time.Duration(svc.DurationMin) * time.Minute)

			st := domain.ServiceTiming{
				ServiceID: svc.ID,
				Start:     cursor,
				End:       svcEnd,
			}

			stepCursor := cursor
			for _, step := range svc.Metadata.Steps {
				stepEnd := stepCursor.Add(time.Duration(step.DurationMin) * time.Minute)
				st.Steps = append(st.Steps, domain.StepTiming{
					Name:  step.Name,
					Start: stepCursor,
					End:   stepEnd,
				})
				stepCursor = stepEnd
			}

			timings = append(timings, st)
			cursor = svcEnd
		}

		out = append(out, domain.Candidate{
			StaffID:  staffID,
			Start:    r.Start,
			End:      r.End,
			Services: timings,
		})
	}

	return out
}

func (uc *GetAvailability) degradedWithoutHolds(
	ctx context.Context,
	in domain.AvailabilityInput,
	eligible []models.Staff,
	services []models.Service,
	minBound, maxBound time.Time,
	location *models.Location,
) ([]domain.Candidate, error) {

	seen := make(map[string]bool)
	var merged []domain.Candidate

	for _, staff := range eligible {
		ranges, err := uc.freeRanges(ctx, staff.ID, in, nil, minBound, maxBound, location)
		if err != nil {
			return nil, err
		}

		for _, c := range annotate(staff.ID, ranges, services) {
			key := c.SlotIdentity()
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, c)
		}
	}

	return merged, nil
}

// --------------------------------------------------
// Cache
// --------------------------------------------------

func (uc *GetAvailability) cacheKey(in domain.AvailabilityInput) string {
	return fmt.Sprintf(
		"availability:%d:%v:%s:%s:%v",
		in.LocationID,
		in.ServiceIDs,
		in.From.UTC().Format(time.RFC3339),
		in.To.UTC().Format(time.RFC3339),
		in.StaffIDs,
	)
}

func (uc *GetAvailability) fromCache(ctx context.Context, in domain.AvailabilityInput) ([]domain.Candidate, bool) {
	if uc.cache == nil || uc.cacheTTL <= 0 {
		return nil, false
	}

	raw, err := uc.cache.Get(ctx, uc.cacheKey(in)).Bytes()
	if err != nil {
		return nil, false
	}

	var out []domain.Candidate
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (uc *GetAvailability) toCache(ctx context.Context, in domain.AvailabilityInput, candidates []domain.Candidate) {
	if uc.cache == nil || uc.cacheTTL <= 0 {
		return
	}

	if payload, err := json.Marshal(candidates); err == nil {
		uc.cache.Set(ctx, uc.cacheKey(in), payload, uc.cacheTTL)
	}
}

func atClock(day time.Time, hm string, loc *time.Location) time.Time {
	t, _ := time.Parse("15:04", hm)
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		t.Hour(), t.Minute(), 0, 0,
		loc,
	)
}
