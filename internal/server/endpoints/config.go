package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/raybanai/raybanai/internal/api"
	"github.com/raybanai/raybanai/internal/config"
	"github.com/raybanai/raybanai/internal/svcctx"
)

// GetConfigEndpoint handles GET /api/config, returning the runtime settings.
type GetConfigEndpoint struct{}

func (e *GetConfigEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/config", e.handler
}

func (e *GetConfigEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get runtime settings
//	@Description	Read the persisted runtime settings
//	@Tags			config
//	@Produce		json
//	@Success		200	{object}	config.Settings
//	@Router			/api/config [get]
func (e *GetConfigEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.SettingsStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusInternalServerError, "settings store not available")
		return
	}
	writeJSON(w, http.StatusOK, store.Get())
}

func (e *GetConfigEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show runtime settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var settings config.Settings
			if err := client.Get(cmd.Context(), "/api/config", &settings); err != nil {
				return err
			}
			return api.Output(settings)
		},
	}
}

// UpdateConfigEndpoint handles POST /api/config, replacing the runtime
// settings. The new settings apply from the next request on.
type UpdateConfigEndpoint struct{}

func (e *UpdateConfigEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/config", e.handler
}

func (e *UpdateConfigEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Update runtime settings
//	@Description	Persist new runtime settings
//	@Tags			config
//	@Accept			json
//	@Produce		json
//	@Param			settings	body		config.Settings	true	"New settings"
//	@Success		200			{object}	config.Settings
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/api/config [post]
func (e *UpdateConfigEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	store := svcctx.SettingsStoreFrom(r.Context())
	if store == nil {
		writeError(w, http.StatusInternalServerError, "settings store not available")
		return
	}

	var settings config.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if settings.DefaultCategory == "" {
		settings.DefaultCategory = config.DefaultCategory
	}

	if err := store.Update(settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Error updating configuration")
		return
	}

	writeJSON(w, http.StatusOK, store.Get())
}

func (e *UpdateConfigEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		storeEnabled  bool
		remotePrompts bool
		category      string
	)
	cmd := &cobra.Command{
		Use:   "config-set",
		Short: "Update runtime settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := config.Settings{
				DocumentStoreEnabled: storeEnabled,
				UseRemotePrompts:     remotePrompts,
				DefaultCategory:      category,
			}
			client := api.NewClient(getServerURL())
			var updated config.Settings
			if err := client.Post(cmd.Context(), "/api/config", settings, &updated); err != nil {
				return err
			}
			return api.Output(updated)
		},
	}
	cmd.Flags().BoolVar(&storeEnabled, "store", false, "Enable the document store sink")
	cmd.Flags().BoolVar(&remotePrompts, "remote-prompts", false, "Prefer prompts from the document store")
	cmd.Flags().StringVar(&category, "category", config.DefaultCategory, "Default prompt category")
	return cmd
}
