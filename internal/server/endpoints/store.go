package endpoints

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/raybanai/raybanai/internal/api"
	"github.com/raybanai/raybanai/internal/docstore"
	"github.com/raybanai/raybanai/internal/svcctx"
)

// StoreStatusResponse reports document store connectivity.
type StoreStatusResponse struct {
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
}

// storeClient returns the document store client or writes the error reply.
func storeClient(w http.ResponseWriter, r *http.Request) *docstore.Client {
	client := svcctx.StoreClientFrom(r.Context())
	if client == nil {
		writeError(w, http.StatusServiceUnavailable, "document store not configured")
		return nil
	}
	return client
}

// StoreTestEndpoint handles GET /api/mongo-test. The route name is kept from
// the original API for client compatibility.
type StoreTestEndpoint struct{}

func (e *StoreTestEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/mongo-test", e.handler
}

func (e *StoreTestEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Test document store connectivity
//	@Tags			store
//	@Produce		json
//	@Success		200	{object}	StoreStatusResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/mongo-test [get]
func (e *StoreTestEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	client := storeClient(w, r)
	if client == nil {
		return
	}
	if err := client.HealthCheck(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "document store unreachable")
		return
	}
	writeJSON(w, http.StatusOK, StoreStatusResponse{Status: "connected", URL: client.URL()})
}

func (e *StoreTestEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "store-test",
		Short: "Test document store connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp StoreStatusResponse
			if err := client.Get(cmd.Context(), "/api/mongo-test", &resp); err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", resp.Status)
			return nil
		},
	}
}

// StoreHistoryEndpoint handles GET /api/mongo-history, listing the analysis
// documents persisted in the document store.
type StoreHistoryEndpoint struct {
	Collection string
}

func (e *StoreHistoryEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/mongo-history", e.handler
}

func (e *StoreHistoryEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		List stored analyses
//	@Tags			store
//	@Produce		json
//	@Success		200	{array}		docstore.Document
//	@Failure		500	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/mongo-history [get]
func (e *StoreHistoryEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	client := storeClient(w, r)
	if client == nil {
		return
	}
	docs, err := client.Find(r.Context(), e.Collection, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error reading stored history")
		return
	}
	if docs == nil {
		docs = []docstore.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (e *StoreHistoryEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "store-history",
		Short: "List analyses persisted in the document store",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var docs []map[string]any
			if err := client.Get(cmd.Context(), "/api/mongo-history", &docs); err != nil {
				return err
			}
			return api.Output(docs)
		},
	}
}

// StoreImageEndpoint handles GET /api/mongo-image/{id}, serving the image
// bytes from one stored analysis document.
type StoreImageEndpoint struct {
	Collection string
}

func (e *StoreImageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/mongo-image/{id}", e.handler
}

func (e *StoreImageEndpoint) RequiresInit() bool { return true }

// handler godoc
//
//	@Summary		Get a stored image
//	@Description	Serve the image bytes from one stored analysis document
//	@Tags			store
//	@Produce		image/jpeg
//	@Param			id	path	string	true	"Document id"
//	@Success		200	{file}	binary
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/api/mongo-image/{id} [get]
func (e *StoreImageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	client := storeClient(w, r)
	if client == nil {
		return
	}

	doc, err := client.Get(r.Context(), e.Collection, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Image not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Error reading stored image")
		return
	}

	encoded, _ := doc["image"].(string)
	if encoded == "" {
		writeError(w, http.StatusNotFound, "Image not found")
		return
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Stored image is corrupt")
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (e *StoreImageEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "store-image <id>",
		Short: "Print the URL of a stored image document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%s/api/mongo-image/%s\n", getServerURL(), args[0])
			return nil
		},
	}
}
