package commands

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mobile-next/sweep2sleep/gesture"
	"github.com/mobile-next/sweep2sleep/input"
	"github.com/mobile-next/sweep2sleep/power"
	"github.com/mobile-next/sweep2sleep/utils"
)

type DoctorRequest struct {
	Version     string
	ConfigPath  string
	Device      string
	NameFilter  string
	Backlight   string
	CatalogPath string
	Listen      string
}

type DoctorInfo struct {
	Version       string `json:"version"`
	DriverVersion string `json:"driver_version"`
	OS            string `json:"os"`
	OSVersion     string `json:"os_version"`
	ConfigPath    string `json:"config_path"`
	ConfigFound   bool   `json:"config_found"`
	InputDevice   string `json:"input_device,omitempty"`
	InputName     string `json:"input_name,omitempty"`
	InputError    string `json:"input_error,omitempty"`
	Backlight     string `json:"backlight,omitempty"`
	ScreenOn      *bool  `json:"screen_on,omitempty"`
	BacklightErr  string `json:"backlight_error,omitempty"`
	Listen        string `json:"listen,omitempty"`
	ServerRunning bool   `json:"server_running"`
	Catalog       string `json:"catalog"`
	CatalogError  string `json:"catalog_error,omitempty"`
	AndroidHome   string `json:"android_home,omitempty"`
	ADBPath       string `json:"adb_path,omitempty"`
	ADBVersion    string `json:"adb_version,omitempty"`
}

func getAndroidSdkPath() string {
	sdkPath := os.Getenv("ANDROID_HOME")
	if sdkPath != "" {
		if _, err := os.Stat(sdkPath); err == nil {
			return sdkPath
		}
	}

	homeDir := os.Getenv("HOME")
	if homeDir != "" {
		for _, p := range []string{
			filepath.Join(homeDir, "Android", "Sdk"),
			filepath.Join(homeDir, "Library", "Android", "sdk"),
		} {
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}

	return ""
}

func getAdbPath() string {
	sdkPath := getAndroidSdkPath()
	if sdkPath != "" {
		adbPath := filepath.Join(sdkPath, "platform-tools", "adb")
		if _, err := os.Stat(adbPath); err == nil {
			return adbPath
		}
	}

	// check if adb is in PATH
	adbPath, err := exec.LookPath("adb")
	if err == nil {
		return adbPath
	}

	return ""
}

func getAdbVersion(adbPath string) string {
	if adbPath == "" {
		return ""
	}

	output, err := exec.Command(adbPath, "version").CombinedOutput()
	if err != nil {
		return ""
	}

	// parse the output to get just the version line
	for _, line := range strings.Split(string(output), "\n") {
		if strings.Contains(line, "Android Debug Bridge version") {
			return strings.TrimSpace(line)
		}
	}

	return strings.TrimSpace(string(output))
}

func getOSVersion() string {
	if runtime.GOOS != "linux" {
		return ""
	}

	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "PRETTY_NAME=") {
			return strings.Trim(strings.TrimPrefix(line, "PRETTY_NAME="), "\"")
		}
	}
	return ""
}

func checkInput(info *DoctorInfo, req DoctorRequest) {
	path := req.Device
	if path == "" {
		found, err := input.FindDevice(req.NameFilter)
		if err != nil {
			info.InputError = err.Error()
			return
		}
		path = found
	}
	info.InputDevice = path

	dev, err := input.OpenDevice(path)
	if err != nil {
		info.InputError = err.Error()
		return
	}
	defer dev.Close()
	info.InputName = dev.Name()
}

func checkBacklight(info *DoctorInfo, path string) {
	if path == "" {
		return
	}
	info.Backlight = path

	on, err := power.NewBacklightWatcher(path, 0, func(bool) {}).Read()
	if err != nil {
		info.BacklightErr = err.Error()
		return
	}
	info.ScreenOn = &on
}

// DoctorCommand performs system diagnostics and returns information about the environment
func DoctorCommand(req DoctorRequest) *CommandResponse {
	info := DoctorInfo{
		Version:       req.Version,
		DriverVersion: gesture.DriverVersion,
		OS:            runtime.GOOS,
		OSVersion:     getOSVersion(),
		ConfigPath:    req.ConfigPath,
		AndroidHome:   os.Getenv("ANDROID_HOME"),
		ADBPath:       getAdbPath(),
		Catalog:       "built-in",
	}

	if _, err := os.Stat(req.ConfigPath); err == nil {
		info.ConfigFound = true
	}

	if info.ADBPath != "" {
		info.ADBVersion = getAdbVersion(info.ADBPath)
	}

	if req.Listen != "" {
		info.Listen = req.Listen
		listen := req.Listen
		if !strings.Contains(listen, ":") {
			listen = ":" + listen
		}
		info.ServerRunning = !utils.IsAddrAvailable(listen)
	}

	checkInput(&info, req)
	checkBacklight(&info, req.Backlight)

	if req.CatalogPath != "" {
		info.Catalog = req.CatalogPath
		if _, err := gesture.LoadCatalog(req.CatalogPath); err != nil {
			info.CatalogError = err.Error()
		}
	}

	return NewSuccessResponse(info)
}
