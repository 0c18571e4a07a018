package endpoints

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/raybanai/raybanai/internal/api"
	"github.com/raybanai/raybanai/internal/history"
	"github.com/raybanai/raybanai/internal/svcctx"
)

// HistoryEndpoint handles GET /api/history.
type HistoryEndpoint struct{}

func (e *HistoryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/history", e.handler
}

func (e *HistoryEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List analysis history
//	@Description	Get all recorded analyses in append order
//	@Tags			history
//	@Produce		json
//	@Success		200	{array}		history.Entry
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/history [get]
func (e *HistoryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	log := svcctx.HistoryFrom(r.Context())
	if log == nil {
		writeError(w, http.StatusInternalServerError, "history log not available")
		return
	}

	entries, err := log.List()
	if err != nil {
		if errors.Is(err, history.ErrNoHistory) {
			writeError(w, http.StatusNotFound, "No history found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error reading history")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (e *HistoryEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show analysis history",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var entries []history.Entry
			if err := client.Get(cmd.Context(), "/api/history", &entries); err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No history found")
				return nil
			}
			return api.Output(entries)
		},
	}
}
