package cmd

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jsphweid/chartconv/catalog"
	"github.com/jsphweid/chartconv/constants"
	"github.com/jsphweid/chartconv/model"
	"github.com/jsphweid/chartconv/store"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveDest string

func init() {
	serveCmd.Flags().StringVarP(&serveDest, "dest", "d", constants.GetDestDir(), "directory of converted songs")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves converted songs over HTTP",
	Long:  `Serves converted songs over HTTP so a player can fetch charts and audio.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cat catalog.Catalog
		if endpoint := constants.GetCatalogEndpoint(); endpoint != "" {
			d, err := catalog.New(endpoint, constants.GetCatalogRegion(), constants.GetCatalogTable())
			if err != nil {
				return err
			}
			cat = d
		}
		addr := constants.GetServeAddr()
		log.WithFields(log.Fields{"addr": addr, "dest": serveDest}).Info("serving songs")
		return http.ListenAndServe(addr, newRouter(serveDest, cat))
	},
}

type songListing struct {
	Path string         `json:"path"`
	Song model.SongData `json:"song"`
}

type server struct {
	dest    string
	catalog catalog.Catalog
}

func newRouter(dest string, cat catalog.Catalog) http.Handler {
	s := &server{dest: dest, catalog: cat}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/songs", s.handleList).Methods("GET")
	router.HandleFunc("/songs/{artist}/{song}/{file}", s.handleFile).Methods("GET")
	if cat != nil {
		router.HandleFunc("/catalog", s.handleCatalog).Methods("GET")
	}
	return cors.Default().Handler(router)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("could not write response")
	}
}

// listSongs finds every song.json under dest.
func listSongs(dest string) ([]songListing, error) {
	res := []songListing{}
	err := filepath.WalkDir(dest, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != store.SongFile {
			return nil
		}
		dir := filepath.Dir(path)
		song, err := store.LoadSongData(dir)
		if err != nil || song == nil {
			log.WithError(err).WithField("dir", dir).Warn("skipping song")
			return nil
		}
		rel, err := filepath.Rel(dest, dir)
		if err != nil {
			return err
		}
		res = append(res, songListing{Path: filepath.ToSlash(rel), Song: *song})
		return nil
	})
	sort.Slice(res, func(i, j int) bool { return res[i].Path < res[j].Path })
	return res, err
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	songs, err := listSongs(s.dest)
	if err != nil && !os.IsNotExist(err) {
		http.Error(w, "could not list songs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, songs)
}

func (s *server) handleFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	parts := []string{vars["artist"], vars["song"], vars["file"]}
	for _, p := range parts {
		if p == "." || p == ".." || strings.ContainsAny(p, `/\`) {
			http.Error(w, "bad path", http.StatusBadRequest)
			return
		}
	}
	path := filepath.Join(append([]string{s.dest}, parts...)...)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

func (s *server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	ids := r.URL.Query()["id"]
	if len(ids) == 0 {
		http.Error(w, "need at least one id", http.StatusBadRequest)
		return
	}
	entries, err := s.catalog.Get(r.Context(), ids)
	if err != nil {
		log.WithError(err).Warn("catalog lookup failed")
		http.Error(w, "catalog lookup failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, entries)
}
