// Package dashboard composes the stats, tabs, filters and results of the
// dashboard page.
package dashboard

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/harentsoaR/thalcare/internal/apiclient"
	"github.com/harentsoaR/thalcare/internal/models"
	"github.com/harentsoaR/thalcare/internal/profilefilter"
)

// API is the part of the HTTP API the dashboard reads from.
type API interface {
	Stats(ctx context.Context) (models.Stats, error)
	Profiles(ctx context.Context) ([]models.Profile, error)
	Profile(ctx context.Context, id string) (*models.ProfileDetail, error)
	ResourcesForPatient(ctx context.Context, userID, bloodType, city string, limit int) (*models.PatientResources, error)
}

// Status reports what went wrong during the last load. Failures never
// propagate further: stats fall back to zero and the list to empty.
type Status struct {
	StatsErr    error
	ProfilesErr error
}

func (s Status) OK() bool { return s.StatsErr == nil && s.ProfilesErr == nil }

// Message is the text shown in the dashboard's error banner, if any.
func (s Status) Message() string {
	if s.ProfilesErr != nil {
		return "Could not load profiles. " + apiclient.UserMessage(s.ProfilesErr)
	}
	if s.StatsErr != nil {
		return "Could not load statistics. " + apiclient.UserMessage(s.StatsErr)
	}
	return ""
}

type Dashboard struct {
	api API
	log *zap.Logger

	mu       sync.RWMutex
	tab      models.Category
	criteria models.Criteria
	stats    models.Stats
	profiles []models.Profile
	status   Status

	resources    *models.PatientResources
	resourcesErr error
}

func New(api API, log *zap.Logger) *Dashboard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dashboard{api: api, log: log, tab: models.CategoryDonors}
}

// Load fetches stats and profiles in parallel. The profile list is replaced
// wholesale.
func (d *Dashboard) Load(ctx context.Context) Status {
	var (
		wg       sync.WaitGroup
		stats    models.Stats
		statsErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		stats, statsErr = d.api.Stats(ctx)
	}()
	profilesErr := d.RefreshProfiles(ctx)
	wg.Wait()

	if statsErr != nil {
		d.log.Warn("fetch stats", zap.Error(statsErr))
		stats = models.Stats{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats = stats
	d.status = Status{StatsErr: statsErr, ProfilesErr: profilesErr}
	return d.status
}

// RefreshProfiles refetches the profile list only.
func (d *Dashboard) RefreshProfiles(ctx context.Context) error {
	profiles, err := d.api.Profiles(ctx)
	if err != nil {
		d.log.Warn("fetch profiles", zap.Error(err))
		profiles = nil
	}
	d.mu.Lock()
	d.profiles = profiles
	d.status.ProfilesErr = err
	d.mu.Unlock()
	return err
}

func (d *Dashboard) SetTab(c models.Category) {
	if c.Role() == "" {
		return
	}
	d.mu.Lock()
	d.tab = c
	d.mu.Unlock()
}

func (d *Dashboard) Tab() models.Category {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tab
}

func (d *Dashboard) SetCriteria(c models.Criteria) {
	d.mu.Lock()
	d.criteria = c
	d.mu.Unlock()
}

func (d *Dashboard) ClearCriteria() {
	d.SetCriteria(models.Criteria{})
}

func (d *Dashboard) Criteria() models.Criteria {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.criteria
}

func (d *Dashboard) Stats() models.Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.stats
}

func (d *Dashboard) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

// Results is the active tab's list narrowed by the current criteria.
func (d *Dashboard) Results() []models.Profile {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return profilefilter.Filter(d.profiles, d.tab, d.criteria)
}

// Detail fetches the role-specific data of one profile. On failure it
// returns an empty mapping together with the error.
func (d *Dashboard) Detail(ctx context.Context, id string) (models.SpecificData, error) {
	detail, err := d.api.Profile(ctx, id)
	if err != nil {
		d.log.Warn("fetch profile detail", zap.String("id", id), zap.Error(err))
		return models.SpecificData{}, err
	}
	return detail.SpecificData, nil
}

// LoadResources fetches the donors and specialist hospitals matched to a
// patient. A failure leaves the panel empty with a message.
func (d *Dashboard) LoadResources(ctx context.Context, patientID string) error {
	res, err := d.api.ResourcesForPatient(ctx, patientID, "", "", 0)
	if err != nil {
		d.log.Warn("fetch patient resources", zap.String("user_id", patientID), zap.Error(err))
		res = nil
	}
	d.mu.Lock()
	d.resources = res
	d.resourcesErr = err
	d.mu.Unlock()
	return err
}

// Tab is one entry of the tab bar.
type Tab struct {
	Category models.Category
	Label    string
	Count    int
	Active   bool
}

// View is everything the dashboard template needs.
type View struct {
	Tabs     []Tab
	Active   models.Category
	Role     models.Role
	Criteria models.Criteria
	Stats    models.Stats
	Results  []models.Profile
	Error    string

	// Resources is set only after LoadResources succeeded.
	Resources      *models.PatientResources
	ResourcesError string
}

func (d *Dashboard) View() View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	counts := profilefilter.Count(d.profiles)
	tabs := make([]Tab, 0, len(models.Categories))
	for _, c := range models.Categories {
		tabs = append(tabs, Tab{Category: c, Label: c.Label(), Count: counts[c], Active: c == d.tab})
	}
	return View{
		Tabs:     tabs,
		Active:   d.tab,
		Role:     d.tab.Role(),
		Criteria: d.criteria,
		Stats:    d.stats,
		Results:  profilefilter.Filter(d.profiles, d.tab, d.criteria),
		Error:    d.status.Message(),

		Resources:      d.resources,
		ResourcesError: resourcesMessage(d.resourcesErr),
	}
}

func resourcesMessage(err error) string {
	if err == nil {
		return ""
	}
	return "Could not load your matches. " + apiclient.UserMessage(err)
}
