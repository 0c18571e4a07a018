package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/raybanai/raybanai/internal/analysis"
	"github.com/raybanai/raybanai/internal/api"
	"github.com/raybanai/raybanai/internal/svcctx"
)

// AnalyzeResponse carries the vision model's analysis text.
type AnalyzeResponse struct {
	Response string `json:"response"`
}

// AnalyzeEndpoint handles POST /api/raybanai, the image analysis entrypoint.
// The legacy route POST /api/gpt-4-vision is kept as an alias for existing
// bookmarklet installs.
type AnalyzeEndpoint struct{}

func (e *AnalyzeEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/raybanai", e.handler
}

func (e *AnalyzeEndpoint) Aliases() []string {
	return []string{"POST /api/gpt-4-vision"}
}

func (e *AnalyzeEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Analyze an image
//	@Description	Send an image reference to the vision model and get back a text analysis
//	@Tags			analysis
//	@Accept			json
//	@Produce		json
//	@Param			request	body		analysis.Request	true	"Image reference and optional category"
//	@Success		200		{object}	AnalyzeResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		429		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/raybanai [post]
func (e *AnalyzeEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	svc := svcctx.AnalysisFrom(r.Context())
	if svc == nil {
		writeError(w, http.StatusInternalServerError, "analysis service not available")
		return
	}

	var req analysis.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := svc.Analyze(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, AnalyzeResponse{Response: out})
	case errors.Is(err, analysis.ErrDuplicate):
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
			Error:   "Duplicate request",
			Message: "This image was already submitted moments ago",
		})
	case errors.Is(err, analysis.ErrNoImage), errors.Is(err, analysis.ErrInvalidSource):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Error processing image",
			Details: err.Error(),
		})
	}
}

func (e *AnalyzeEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		imageURL  string
		imagePath string
		category  string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze an image via the running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := analysis.Request{Category: category}
			switch {
			case imageURL != "":
				req.Type = analysis.SourceURL
				req.ImageURL = imageURL
			case imagePath != "":
				req.Type = analysis.SourceLocal
				req.ImagePath = imagePath
			default:
				return fmt.Errorf("either --url or --file is required")
			}

			client := api.NewClient(getServerURL())
			var resp AnalyzeResponse
			if err := client.Post(cmd.Context(), "/api/raybanai", req, &resp); err != nil {
				return err
			}
			fmt.Println(resp.Response)
			return nil
		},
	}
	cmd.Flags().StringVar(&imageURL, "url", "", "Image URL to analyze")
	cmd.Flags().StringVar(&imagePath, "file", "", "Local image file to analyze")
	cmd.Flags().StringVar(&category, "category", "", "Prompt category (default from settings)")
	return cmd
}
