package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/klauern/wsprofile/internal/apply"
	"github.com/klauern/wsprofile/internal/logging"
	"github.com/klauern/wsprofile/internal/model"
	"github.com/klauern/wsprofile/internal/store"
)

// MarketplaceURL is the base of an extension's marketplace page.
const MarketplaceURL = "https://marketplace.visualstudio.com/items"

// ProfileStore is the subset of store.Store the controller uses.
type ProfileStore interface {
	List(ctx context.Context) (builtIns, users []model.WorkspaceProfile)
	Get(ctx context.Context, id string) (model.WorkspaceProfile, error)
	Save(ctx context.Context, candidate model.WorkspaceProfile, isEditIntent bool) (model.WorkspaceProfile, error)
	Delete(ctx context.Context, id string) error
}

// Applier is the subset of apply.Applier the controller uses.
type Applier interface {
	ApplyToWorkspace(ctx context.Context, profile model.WorkspaceProfile, root string) (*apply.Report, error)
	ScaffoldWorkspace(ctx context.Context, profile model.WorkspaceProfile, dest string) error
}

// Controller turns requests into store and applier calls and reports the
// result as events. It holds no profile state of its own.
type Controller struct {
	store     ProfileStore
	applier   Applier
	workspace string
	id        string
}

// Option configures a Controller.
type Option func(*Controller)

// WithWorkspace sets the workspace used when an apply request names none.
func WithWorkspace(root string) Option {
	return func(c *Controller) {
		c.workspace = root
	}
}

// NewController returns a Controller with a fresh session id.
func NewController(st ProfileStore, ap Applier, opts ...Option) *Controller {
	c := &Controller{store: st, applier: ap, id: uuid.NewString()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the session id attached to this controller's log lines.
func (c *Controller) ID() string {
	return c.id
}

// Handle processes one request. Failures are reported as events; Handle
// never returns an error and recovers from panics in the handlers.
func (c *Controller) Handle(ctx context.Context, req Request) (events []Event) {
	log := logging.WithContext(ctx).With(slog.String("session", c.id))
	ctx = logging.NewContext(ctx, log)

	defer func() {
		if r := recover(); r != nil {
			log.Error("request handler panicked", slog.Any("panic", r))
			events = append(events, errorf("An error occurred: %v", r))
		}
	}()

	switch r := req.(type) {
	case GetProfiles:
		return []Event{c.profilesLoaded(ctx)}
	case ApplyConfiguration:
		return c.applyConfiguration(ctx, r)
	case CreateWorkspace:
		return c.createWorkspace(ctx, r)
	case SaveUserProfile:
		return c.saveUserProfile(ctx, r)
	case DeleteUserProfile:
		return c.deleteUserProfile(ctx, r)
	case ShowError:
		return []Event{Notification{Level: LevelError, Text: r.Text}}
	case ShowInfo:
		return []Event{Notification{Level: LevelInfo, Text: r.Text}}
	case OpenMarketplacePage:
		return c.openMarketplacePage(r)
	default:
		log.Warn("unsupported request", slog.String("type", fmt.Sprintf("%T", req)))
		return []Event{errorf("Unsupported request %T", req)}
	}
}

func (c *Controller) profilesLoaded(ctx context.Context) ProfilesLoaded {
	builtIns, users := c.store.List(ctx)
	return ProfilesLoaded{BuiltIn: wrap(builtIns), User: wrap(users)}
}

func (c *Controller) applyConfiguration(ctx context.Context, r ApplyConfiguration) []Event {
	profile, err := c.store.Get(ctx, r.ProfileID)
	if err != nil {
		return []Event{errorf("Profile with ID %q not found.", r.ProfileID)}
	}

	root := r.Root
	if root == "" {
		root = c.workspace
	}

	report, err := c.applier.ApplyToWorkspace(ctx, profile, root)
	if errors.Is(err, apply.ErrNoWorkspace) {
		return []Event{errorf("No workspace folder is open. Please open a folder before applying a configuration.")}
	}
	if err != nil {
		return []Event{errorf("Failed to apply configuration %q: %v", profile.Name, err)}
	}

	warnings := report.Warnings()
	events := make([]Event, 0, len(warnings)+2)
	for _, w := range warnings {
		events = append(events, Notification{Level: LevelWarning, Text: w})
	}
	events = append(events,
		Notification{Level: LevelInfo, Text: fmt.Sprintf("Workspace configuration %q applied successfully!", profile.Name)},
		ApplyCompleted{ProfileID: profile.ID, Warnings: warnings},
	)
	return events
}

func (c *Controller) createWorkspace(ctx context.Context, r CreateWorkspace) []Event {
	profile, err := c.store.Get(ctx, r.ProfileID)
	if err != nil {
		return []Event{errorf("Profile with ID %q not found.", r.ProfileID)}
	}
	if err := c.applier.ScaffoldWorkspace(ctx, profile, r.Destination); err != nil {
		return []Event{errorf("Failed to set up workspace: %v", err)}
	}
	return []Event{
		Notification{Level: LevelInfo, Text: fmt.Sprintf("Workspace %q created at %s.", profile.Name, r.Destination)},
		WorkspaceCreated{ProfileID: profile.ID, Path: r.Destination},
	}
}

func (c *Controller) saveUserProfile(ctx context.Context, r SaveUserProfile) []Event {
	saved, err := c.store.Save(ctx, r.Profile, r.IsEditingExisting)
	switch {
	case errors.Is(err, store.ErrPersist):
		msg := "Failed to persist profile to storage."
		return []Event{errorf("%s", msg), ProfileSaveFailed{Message: msg}, c.profilesLoaded(ctx)}
	case err != nil:
		msg := saveFailureMessage(err)
		return []Event{errorf("%s", msg), ProfileSaveFailed{Message: msg}}
	}

	return []Event{
		Notification{Level: LevelInfo, Text: fmt.Sprintf("Profile %q saved successfully.", saved.Name)},
		c.profilesLoaded(ctx),
		ProfileSavedOrDeleted{},
		ProfileActionCompleted{Action: "save", ID: saved.ID},
	}
}

func (c *Controller) deleteUserProfile(ctx context.Context, r DeleteUserProfile) []Event {
	err := c.store.Delete(ctx, r.ProfileID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return []Event{
			Notification{Level: LevelWarning, Text: fmt.Sprintf("User profile with ID %q not found for deletion.", r.ProfileID)},
			c.profilesLoaded(ctx),
		}
	case err != nil:
		return []Event{
			errorf("Failed to save changes after deletion. Profile may reappear."),
			c.profilesLoaded(ctx),
		}
	}

	return []Event{
		Notification{Level: LevelInfo, Text: fmt.Sprintf("User profile %q deleted.", r.ProfileID)},
		c.profilesLoaded(ctx),
		ProfileSavedOrDeleted{},
		ProfileActionCompleted{Action: "delete", ID: model.NormalizeID(r.ProfileID)},
	}
}

func (c *Controller) openMarketplacePage(r OpenMarketplacePage) []Event {
	id := strings.TrimSpace(r.ExtensionID)
	if id == "" {
		return nil
	}
	return []Event{OpenExternal{URL: MarketplacePage(id)}}
}

// MarketplacePage returns the marketplace URL for an extension id.
func MarketplacePage(extensionID string) string {
	return MarketplaceURL + "?" + url.Values{"itemName": {extensionID}}.Encode()
}

// saveFailureMessage strips the sentinel prefix so the user sees the cause.
func saveFailureMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrDuplicateID):
		if _, after, ok := strings.Cut(err.Error(), store.ErrDuplicateID.Error()+": "); ok {
			return after
		}
	case errors.Is(err, store.ErrInvalidProfile):
		if _, after, ok := strings.Cut(err.Error(), store.ErrInvalidProfile.Error()+": "); ok {
			return after
		}
	}
	return err.Error()
}

func wrap(profiles []model.WorkspaceProfile) []Profile {
	out := make([]Profile, len(profiles))
	for i, p := range profiles {
		out[i] = Profile{WorkspaceProfile: p, IsUserDefined: p.IsUserDefined}
	}
	return out
}

func errorf(format string, args ...any) Notification {
	return Notification{Level: LevelError, Text: fmt.Sprintf(format, args...)}
}
