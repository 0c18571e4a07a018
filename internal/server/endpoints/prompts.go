package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/raybanai/raybanai/internal/api"
	"github.com/raybanai/raybanai/internal/svcctx"
)

// SetPromptRequest is the request body for setting a category prompt.
type SetPromptRequest struct {
	Category string `json:"category"`
	Prompt   string `json:"prompt"`
}

// ListPromptsEndpoint handles GET /api/prompts.
type ListPromptsEndpoint struct{}

func (e *ListPromptsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/prompts", e.handler
}

func (e *ListPromptsEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List prompts
//	@Description	Get the category to prompt mapping after source resolution
//	@Tags			prompts
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/prompts [get]
func (e *ListPromptsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resolver := svcctx.ResolverFrom(r.Context())
	store := svcctx.SettingsStoreFrom(r.Context())
	if resolver == nil || store == nil {
		writeError(w, http.StatusInternalServerError, "prompt resolver not available")
		return
	}
	writeJSON(w, http.StatusOK, resolver.All(r.Context(), store.Get()))
}

func (e *ListPromptsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "prompts",
		Short: "List prompt categories and texts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var prompts map[string]string
			if err := client.Get(cmd.Context(), "/api/prompts", &prompts); err != nil {
				return err
			}
			return api.Output(prompts)
		},
	}
}

// SetPromptEndpoint handles POST /api/prompts, writing to the local store.
type SetPromptEndpoint struct{}

func (e *SetPromptEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/prompts", e.handler
}

func (e *SetPromptEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Set a prompt
//	@Description	Create or overwrite the local prompt for a category
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			prompt	body		SetPromptRequest	true	"Category and prompt text"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/prompts [post]
func (e *SetPromptEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	resolver := svcctx.ResolverFrom(r.Context())
	if resolver == nil {
		writeError(w, http.StatusInternalServerError, "prompt resolver not available")
		return
	}

	var req SetPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Category == "" || req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "category and prompt are required")
		return
	}

	if err := resolver.SetLocal(req.Category, req.Prompt); err != nil {
		writeError(w, http.StatusInternalServerError, "Error saving prompt")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{req.Category: req.Prompt})
}

func (e *SetPromptEndpoint) Command(getServerURL func() string) *cobra.Command {
	var category, prompt string
	cmd := &cobra.Command{
		Use:   "prompt-set",
		Short: "Set the local prompt for a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp map[string]string
			req := SetPromptRequest{Category: category, Prompt: prompt}
			if err := client.Post(cmd.Context(), "/api/prompts", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Prompt category")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Prompt text")
	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("prompt")
	return cmd
}
