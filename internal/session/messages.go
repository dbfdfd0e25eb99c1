// Package session implements the message protocol between a profile
// front end and the store and applier.
//
// Requests and events are JSON objects tagged by a "command" field. Serve
// reads one request per line and writes one event per line.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klauern/wsprofile/internal/model"
)

// ErrUnknownCommand is returned by Decode for a command name it does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Request is an inbound message. The set of implementations is closed.
type Request interface {
	request()
}

// GetProfiles asks for the current built-in and user profile lists.
type GetProfiles struct{}

// ApplyConfiguration applies a profile to an open workspace. An empty Root
// falls back to the controller's workspace.
type ApplyConfiguration struct {
	ProfileID string `json:"profileId"`
	Root      string `json:"workspaceRoot,omitempty"`
}

// CreateWorkspace scaffolds a new workspace folder from a profile.
type CreateWorkspace struct {
	ProfileID   string `json:"profileId"`
	Destination string `json:"destination"`
}

// SaveUserProfile creates or edits a user profile.
type SaveUserProfile struct {
	Profile           model.WorkspaceProfile `json:"profileData"`
	IsEditingExisting bool                   `json:"isEditingExisting"`
}

// DeleteUserProfile removes a user profile.
type DeleteUserProfile struct {
	ProfileID string `json:"profileId"`
}

// ShowError relays an error message from the front end.
type ShowError struct {
	Text string `json:"text"`
}

// ShowInfo relays an informational message from the front end.
type ShowInfo struct {
	Text string `json:"text"`
}

// OpenMarketplacePage asks for an extension's marketplace page.
type OpenMarketplacePage struct {
	ExtensionID string `json:"extensionId"`
}

func (GetProfiles) request()         {}
func (ApplyConfiguration) request()  {}
func (CreateWorkspace) request()     {}
func (SaveUserProfile) request()     {}
func (DeleteUserProfile) request()   {}
func (ShowError) request()           {}
func (ShowInfo) request()            {}
func (OpenMarketplacePage) request() {}

// Command names on the wire.
const (
	CmdGetProfiles         = "getProfiles"
	CmdApplyConfiguration  = "applyConfiguration"
	CmdCreateWorkspace     = "createWorkspace"
	CmdSaveUserProfile     = "saveUserProfile"
	CmdDeleteUserProfile   = "deleteUserProfile"
	CmdShowError           = "showError"
	CmdShowInfo            = "showInfo"
	CmdOpenMarketplacePage = "openMarketplacePage"
)

// Decode parses one JSON request.
func Decode(line []byte) (Request, error) {
	var envelope struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(line, &envelope); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	switch envelope.Command {
	case CmdGetProfiles:
		return GetProfiles{}, nil
	case CmdApplyConfiguration:
		return decodeAs[ApplyConfiguration](line, envelope.Command)
	case CmdCreateWorkspace:
		return decodeAs[CreateWorkspace](line, envelope.Command)
	case CmdSaveUserProfile:
		return decodeAs[SaveUserProfile](line, envelope.Command)
	case CmdDeleteUserProfile:
		return decodeAs[DeleteUserProfile](line, envelope.Command)
	case CmdShowError:
		return decodeAs[ShowError](line, envelope.Command)
	case CmdShowInfo:
		return decodeAs[ShowInfo](line, envelope.Command)
	case CmdOpenMarketplacePage:
		return decodeAs[OpenMarketplacePage](line, envelope.Command)
	case "":
		return nil, fmt.Errorf("invalid request: missing command")
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, envelope.Command)
}

func decodeAs[T Request](line []byte, command string) (Request, error) {
	var req T
	if err := json.Unmarshal(line, &req); err != nil {
		return nil, fmt.Errorf("invalid %s request: %w", command, err)
	}
	return req, nil
}

// Event is an outbound message.
type Event interface {
	// Command is the wire name of the event.
	Command() string
}

// Profile is a profile as sent to the front end, with its kind tag.
type Profile struct {
	model.WorkspaceProfile
	IsUserDefined bool `json:"isUserDefined"`
}

// ProfilesLoaded carries both profile lists.
type ProfilesLoaded struct {
	BuiltIn []Profile `json:"builtInProfiles"`
	User    []Profile `json:"userProfiles"`
}

// ProfileSavedOrDeleted signals that a save succeeded.
type ProfileSavedOrDeleted struct{}

// ProfileActionCompleted reports a finished save or delete.
type ProfileActionCompleted struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

// ProfileSaveFailed reports why a save was rejected.
type ProfileSaveFailed struct {
	Message string `json:"message"`
}

// ApplyCompleted reports a finished in-place apply.
type ApplyCompleted struct {
	ProfileID string   `json:"profileId"`
	Warnings  []string `json:"warnings"`
}

// WorkspaceCreated reports a scaffolded workspace.
type WorkspaceCreated struct {
	ProfileID string `json:"profileId"`
	Path      string `json:"path"`
}

// Level is a notification severity.
type Level string

// Notification levels.
const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a message to show the user.
type Notification struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// OpenExternal asks the front end to open a URL.
type OpenExternal struct {
	URL string `json:"url"`
}

func (ProfilesLoaded) Command() string         { return "profilesLoaded" }
func (ProfileSavedOrDeleted) Command() string  { return "profileSavedOrDeleted" }
func (ProfileActionCompleted) Command() string { return "profileActionCompleted" }
func (ProfileSaveFailed) Command() string      { return "profileSaveFailed" }
func (ApplyCompleted) Command() string         { return "applyCompleted" }
func (WorkspaceCreated) Command() string       { return "workspaceCreated" }
func (Notification) Command() string           { return "notification" }
func (OpenExternal) Command() string           { return "openExternal" }

// Encode renders an event as a single JSON object with its "command" field.
func Encode(ev Event) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", ev.Command(), err)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", ev.Command(), err)
	}
	name, _ := json.Marshal(ev.Command())
	fields["command"] = name

	return json.Marshal(fields)
}
