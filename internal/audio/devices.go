package audio

import (
	"fmt"
	"sort"

	"github.com/gordonklaus/portaudio"
)

// Device describes an audio device for the --list-audio-devices output.
type Device struct {
	Name           string
	HostAPI        string
	Inputs         int
	Outputs        int
	SampleRate     float64
	IsDefaultInput bool
}

// ListDevices returns all devices across host APIs, sorted by host and
// name.
func ListDevices() ([]Device, error) {
	hosts, err := portaudio.HostApis()
	if err != nil {
		return nil, fmt.Errorf("host apis: %w", err)
	}

	defaultInput := -1
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		defaultInput = def.Index
	}

	var devices []Device
	for _, host := range hosts {
		for _, d := range host.Devices {
			devices = append(devices, Device{
				Name:           d.Name,
				HostAPI:        host.Name,
				Inputs:         d.MaxInputChannels,
				Outputs:        d.MaxOutputChannels,
				SampleRate:     d.DefaultSampleRate,
				IsDefaultInput: d.Index == defaultInput,
			})
		}
	}

	sort.Slice(devices, func(i, j int) bool {
		if devices[i].HostAPI == devices[j].HostAPI {
			return devices[i].Name < devices[j].Name
		}
		return devices[i].HostAPI < devices[j].HostAPI
	})
	return devices, nil
}
