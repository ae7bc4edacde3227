// Command sffweb serves the sprites of one container over HTTP.
package main

import (
	"bytes"
	"flag"
	"io/ioutil"
	"net/http"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/net/trace"

	"badc0de.net/pkg/flagutil/v1"

	"badc0de.net/pkg/go-mugen/sff"
	"badc0de.net/pkg/go-mugen/sff/sffv1"
	"badc0de.net/pkg/go-mugen/web"
)

var (
	listenAddress = flag.String("listen_address", ":8080", "http listen address for sffweb")
	sffPath       = flag.String("sff", "", "path to the sprite container")
	palPath       = flag.String("pal", "", "external palette file for legacy containers")
)

func load() (*sff.File, []byte, time.Time, error) {
	container, err := ioutil.ReadFile(*sffPath)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	var modTime time.Time
	if s, err := os.Stat(*sffPath); err == nil {
		modTime = s.ModTime()
	}

	var pals []sffv1.Palette
	if *palPath != "" {
		pf, err := os.Open(*palPath)
		if err != nil {
			return nil, nil, time.Time{}, err
		}
		pal, err := sffv1.ReadPalette(pf)
		pf.Close()
		if err != nil {
			return nil, nil, time.Time{}, err
		}
		pals = append(pals, pal)
	}

	f, err := sff.Read(bytes.NewReader(container), pals...)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	return f, container, modTime, nil
}

func main() {
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	f, container, modTime, err := load()
	if err != nil {
		glog.Exitf("loading %q: %v", *sffPath, err)
	}
	glog.Infof("serving %d sprites from %q on %s", f.SpriteCount(), *sffPath, *listenAddress)

	r := mux.NewRouter()
	web.NewHandler(f, container, modTime).RegisterRoutes(r)
	r.HandleFunc("/debug/requests", trace.Traces)
	r.HandleFunc("/debug/events", trace.Events)

	glog.Fatal(http.ListenAndServe(*listenAddress, handlers.CombinedLoggingHandler(os.Stderr, handlers.CompressHandler(r))))
}
