package main

import (
	"flag"
	"log"
	"os"

	"github.com/neovim/go-client/nvim"

	"github.com/kndndrj/nvim-dbedit/dbedit/handler"
	"github.com/kndndrj/nvim-dbedit/dbedit/plugin"
)

func main() {
	generateManifest := flag.Bool("manifest", false, "generate the lua manifest instead of serving")
	host := flag.String("host", "nvim_dbedit", "name of the remote plugin host (manifest only)")
	output := flag.String("output", "manifest.lua", "manifest output path (manifest only)")
	flag.Parse()

	if *generateManifest {
		executable, err := os.Executable()
		if err != nil {
			log.Fatal(err)
		}

		p := plugin.New(nil, nil)
		mountEndpoints(p, nil)
		if err := p.Manifest(*host, executable, *output); err != nil {
			log.Fatal(err)
		}
		return
	}

	// stdout is the rpc channel
	stdout := os.Stdout
	os.Stdout = os.Stderr

	v, err := nvim.New(os.Stdin, stdout, stdout, log.Printf)
	if err != nil {
		log.Fatal(err)
	}

	logger := plugin.NewLogger(v)
	defer logger.Close()

	p := plugin.New(v, logger)

	h := handler.New(v, logger)
	defer h.Close()

	mountEndpoints(p, h)

	if err := v.Serve(); err != nil {
		logger.Errorf("v.Serve: %s", err)
	}
}
