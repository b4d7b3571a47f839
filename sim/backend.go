package sim

import (
	"os"

	"github.com/thesyncim/edge"
)

// BackendName is the name the simulated SDK registers under.
const BackendName = "sim"

func init() {
	edge.RegisterBackend(BackendName, func() (*edge.Backend, error) {
		cfg, err := LoadConfig(os.Getenv(EnvConfig))
		if err != nil {
			return nil, err
		}
		return New(cfg).Backend(), nil
	})
}

// Backend exposes s as a facade backend.
func (s *SDK) Backend() *edge.Backend {
	return &edge.Backend{
		Name:  BackendName,
		SDK:   s,
		Cloud: s.cloud,
		Media: s.media,
		NewLiveview: func() edge.Liveview {
			return s.NewLiveview()
		},
		Close: s.Close,
	}
}
