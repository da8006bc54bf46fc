// Package platform classifies the requesting device and opens URLs on the host.
package platform

import (
	"regexp"
)

// mobilePattern is the fixed set of user-agent substrings treated as mobile.
var mobilePattern = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)

// iosPattern and androidPattern are case-sensitive, matching browser conventions.
var (
	iosPattern     = regexp.MustCompile(`iPad|iPhone|iPod`)
	androidPattern = regexp.MustCompile(`Android`)
)

// Sample user agents, used as CLI defaults and in tests.
const (
	UserAgentIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"
	UserAgentAndroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Mobile Safari/537.36"
	UserAgentDesktop = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// OS is a coarse mobile operating system classification.
type OS string

// OS values.
const (
	OSIOS     OS = "ios"
	OSAndroid OS = "android"
	OSOther   OS = "other"
)

// Info is the classification of a user agent.
type Info struct {
	UserAgent string `json:"user_agent"`
	Mobile    bool   `json:"mobile"`
	OS        OS     `json:"os"`
}

// Detect classifies a user agent string.
func Detect(userAgent string) Info {
	info := Info{
		UserAgent: userAgent,
		Mobile:    IsMobile(userAgent),
		OS:        OSOther,
	}
	switch {
	case IsIOS(userAgent):
		info.OS = OSIOS
	case IsAndroid(userAgent):
		info.OS = OSAndroid
	}
	return info
}

// IsMobile reports whether the user agent belongs to a mobile device.
func IsMobile(userAgent string) bool {
	return mobilePattern.MatchString(userAgent)
}

// IsIOS reports whether the user agent belongs to an iOS device.
func IsIOS(userAgent string) bool {
	return iosPattern.MatchString(userAgent)
}

// IsAndroid reports whether the user agent belongs to an Android device.
func IsAndroid(userAgent string) bool {
	return androidPattern.MatchString(userAgent)
}
