package device

import (
	"testing"

	cdpdevice "github.com/chromedp/chromedp/device"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileTable(t *testing.T) {
	list := List()
	require.Len(t, list, 4)

	assert.Equal(t, "Desktop 1920x1080", list[0].Name)
	assert.Equal(t, int64(1920), list[0].Width)
	assert.Equal(t, int64(1080), list[0].Height)
	assert.Equal(t, "Desktop 1024x768", list[1].Name)
	assert.Equal(t, cdpdevice.IPad.Device().Name, list[2].Name)
	assert.Equal(t, cdpdevice.IPadlandscape.Device().Name, list[3].Name)
	assert.Equal(t, list[0], Default())

	list[0].Name = "mutated"
	assert.Equal(t, "Desktop 1920x1080", Default().Name)
}

func TestByIndex(t *testing.T) {
	p, err := ByIndex(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1024), p.Width)

	_, err = ByIndex(4)
	assert.Error(t, err)
	_, err = ByIndex(-1)
	assert.Error(t, err)
}

func TestByName(t *testing.T) {
	p, err := ByName(" desktop 1024x768 ")
	require.NoError(t, err)
	assert.Equal(t, int64(768), p.Height)

	_, err = ByName("Nokia 3310")
	assert.Error(t, err)
}

func TestDeviceInfo(t *testing.T) {
	info := Profile{Name: "custom", UserAgent: "ua", Width: 10, Height: 20}.Device()
	assert.Equal(t, "ua", info.UserAgent)
	assert.Equal(t, 1.0, info.Scale)
	assert.Equal(t, int64(20), info.Height)
}
