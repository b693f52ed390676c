package commands

import (
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mobile-next/sweep2sleep/gesture"
	"github.com/mobile-next/sweep2sleep/service"
	"github.com/mobile-next/sweep2sleep/types"
	"github.com/mobile-next/sweep2sleep/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTestService(t *testing.T, mask int) *service.Service {
	t.Helper()
	s, err := service.New(service.Options{
		Mask:    mask,
		Version: "test",
		Clock:   utils.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	SetService(s)
	t.Cleanup(func() {
		SetService(nil)
		s.Close()
	})
	return s
}

func TestCommands_WithoutService(t *testing.T) {
	SetService(nil)

	for _, resp := range []*CommandResponse{
		StatusCommand(),
		MaskGetCommand(),
		TriggersCommand(),
		ScreenSetCommand(ScreenSetRequest{On: true}),
	} {
		assert.Equal(t, "error", resp.Status)
		assert.ErrorIs(t, resp.Err(), ErrNotRunning)
	}

	assert.Equal(t, "ok", VersionCommand("1.2.3").Status)
}

func TestMaskSetCommand(t *testing.T) {
	s := withTestService(t, 0)

	tests := []struct {
		name    string
		mask    interface{}
		want    gesture.Mask
		wantErr bool
	}{
		{"decimal string", "28", 28, false},
		{"json number", float64(284), 284, false},
		{"unimplemented bits cleared", "511", gesture.DefaultImplemented, false},
		{"negative", "-1", 0, true},
		{"fraction", 2.5, 0, true},
		{"garbage", "0x1c", 0, true},
		{"missing", nil, 0, true},
		{"too large", float64(65536), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SetMask(4)
			require.NoError(t, err)

			resp := MaskSetCommand(MaskSetRequest{Mask: tt.mask})
			if tt.wantErr {
				assert.Equal(t, "error", resp.Status)
				assert.ErrorIs(t, resp.Err(), gesture.ErrInvalidArgument)
				assert.Equal(t, gesture.Mask(4), s.Settings().Mask(), "prior mask kept")
				return
			}
			require.Equal(t, "ok", resp.Status, resp.Error)
			assert.Equal(t, tt.want, s.Settings().Mask())
		})
	}
}

func TestMaskGetAndImplemented(t *testing.T) {
	withTestService(t, 28)

	resp := MaskGetCommand()
	require.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, uint32(28), data["mask"])
	assert.Equal(t, "0x1c", data["hex"])

	resp = ImplementedCommand()
	require.Equal(t, "ok", resp.Status)
	assert.Equal(t, uint32(gesture.DefaultImplemented), resp.Data.(map[string]interface{})["implemented"])
}

func TestInjectCommand(t *testing.T) {
	s := withTestService(t, int(gesture.BitStatic3))

	resp := InjectCommand(InjectRequest{Events: []InjectEvent{
		{Type: "point", X: 1000, Y: 1800},
		{Type: "lift", X: 1000, Y: 1800},
		{Type: "slot"},
	}})
	require.Equal(t, "ok", resp.Status, resp.Error)
	assert.Equal(t, map[string]int{"queued": 3}, resp.Data)
	assert.Equal(t, 3, s.Flush())

	resp = InjectCommand(InjectRequest{Events: []InjectEvent{{Type: "hover"}}})
	assert.ErrorIs(t, resp.Err(), gesture.ErrInvalidArgument)

	resp = InjectCommand(InjectRequest{})
	assert.ErrorIs(t, resp.Err(), gesture.ErrInvalidArgument)
}

func TestStatusAndTriggersCommands(t *testing.T) {
	s := withTestService(t, int(gesture.BitStatic3))

	for _, p := range [][2]int{{1000, 1800}, {500, 1800}, {100, 1800}} {
		InjectCommand(InjectRequest{Events: []InjectEvent{{Type: "point", X: p[0], Y: p[1]}}})
		s.Flush()
	}

	resp := TriggersCommand()
	require.Equal(t, "ok", resp.Status)
	triggers := resp.Data.([]types.Trigger)
	require.Len(t, triggers, 1)
	assert.Equal(t, "static.3", triggers[0].Bank)

	resp = StatusCommand()
	require.Equal(t, "ok", resp.Status)
	status := resp.Data.(types.Status)
	assert.Equal(t, "test", status.Version)
	assert.Equal(t, gesture.DriverVersion, status.DriverVersion)
	assert.Equal(t, uint64(1), status.Triggers)
}

func TestDebugAndScreenCommands(t *testing.T) {
	s := withTestService(t, 0)
	defer utils.SetVerbose(false)

	require.Equal(t, "ok", DebugSetCommand(DebugSetRequest{Enabled: true}).Status)
	assert.True(t, s.Settings().Debug())

	require.Equal(t, "ok", ScreenSetCommand(ScreenSetRequest{On: false}).Status)
	s.Flush()
	assert.True(t, s.Status().Screen.Suspended)
}

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()
	trace := filepath.Join(dir, "swipe.trace")
	require.NoError(t, os.WriteFile(trace, []byte("point 1000 1800\npoint 500 1800\npoint 100 1800\n"), 0o644))

	resp := ReplayCommand(ReplayRequest{TracePath: trace, Mask: int(gesture.BitStatic3)})
	require.Equal(t, "ok", resp.Status, resp.Error)
	result := resp.Data.(*service.ReplayResult)
	require.Len(t, result.Triggers, 1)

	resp = ReplayCommand(ReplayRequest{TracePath: trace, Mask: int(gesture.BitStatic4)})
	require.Equal(t, "ok", resp.Status, resp.Error)
	assert.Empty(t, resp.Data.(*service.ReplayResult).Triggers)

	resp = ReplayCommand(ReplayRequest{TracePath: filepath.Join(dir, "missing")})
	assert.Equal(t, "error", resp.Status)

	resp = ReplayCommand(ReplayRequest{TracePath: trace, Gate: "sideways"})
	assert.ErrorIs(t, resp.Err(), gesture.ErrInvalidArgument)
}

func TestCatalogCommand(t *testing.T) {
	resp := CatalogCommand("")
	require.Equal(t, "ok", resp.Status)
	text := resp.Data.(string)
	assert.True(t, strings.Contains(text, "[dynamic.1]"), text)
	assert.Contains(t, text, "implemented")

	resp = CatalogCommand(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Equal(t, "error", resp.Status)
}

func TestDoctorCommand(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	dir := t.TempDir()
	backlight := filepath.Join(dir, "bl_power")
	require.NoError(t, os.WriteFile(backlight, []byte("0\n"), 0o644))

	resp := DoctorCommand(DoctorRequest{
		Version:    "test",
		ConfigPath: filepath.Join(dir, "config.toml"),
		Device:     filepath.Join(dir, "event0"),
		Backlight:  backlight,
		Listen:     listener.Addr().String(),
	})
	require.Equal(t, "ok", resp.Status)

	info := resp.Data.(DoctorInfo)
	assert.Equal(t, gesture.DriverVersion, info.DriverVersion)
	assert.False(t, info.ConfigFound)
	assert.NotEmpty(t, info.InputError)
	require.NotNil(t, info.ScreenOn)
	assert.True(t, *info.ScreenOn)
	assert.Equal(t, "built-in", info.Catalog)
	assert.True(t, info.ServerRunning)
}
