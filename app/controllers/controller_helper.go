package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/internal/pkg/usercontext"
)

// Session keys shared with the session middleware.
const (
	AUTH_KEY      string = "authenticated"
	USER_ID       string = "user_id"
	USER_NAME     string = "username"
	USER_IS_ADMIN string = "isAdmin"
)

func isLoggedIn(c *fiber.Ctx) bool {
	var fromProtected bool
	if protectedValue := c.Locals(usercontext.KeyFromProtected); protectedValue != nil {
		fromProtected = protectedValue.(bool)
	}

	return fromProtected
}

// ExtractUsername gets the username from Locals (set by middleware)
func ExtractUsername(c *fiber.Ctx) string {
	if userNameValue := c.Locals(usercontext.KeyUserName); userNameValue != nil {
		if userName, ok := userNameValue.(string); ok {
			return userName
		}
	}

	return ""
}

// render merges the per-request context into the template bind and renders
// the page inside the main layout.
func render(c *fiber.Ctx, template string, title string, bind fiber.Map) error {
	userCtx := usercontext.GetUserContext(c)

	if bind == nil {
		bind = fiber.Map{}
	}
	bind["Title"] = title
	bind["IsLoggedIn"] = userCtx.IsLoggedIn
	bind["IsAdmin"] = userCtx.IsAdmin
	bind["Username"] = userCtx.Username
	bind["Tier"] = userCtx.Tier
	bind["Flash"] = flash.Get(c)
	if csrf := c.Locals("csrf"); csrf != nil {
		bind["CSRFToken"] = csrf
	}
	if settings := models.GetAppSettings(); settings != nil {
		bind["SiteTitle"] = settings.GetSiteTitle()
	}

	return c.Render(template, bind, "layouts/main")
}

// GetClientIP determines the actual client IP address considering proxies.
// Returns both IPv4 and IPv6 addresses if available.
func GetClientIP(c *fiber.Ctx) (string, string) {
	ipv4 := ""
	ipv6 := ""

	// Cloudflare provides the original client IP in this header
	cfIP := c.Get("CF-Connecting-IP")
	if cfIP != "" {
		if strings.Contains(cfIP, ":") {
			ipv6 = cfIP
			if ip := findAddressInXFF(c.Get("X-Forwarded-For"), false); ip != "" {
				ipv4 = ip
			}
		} else {
			ipv4 = cfIP
			if ip := findAddressInXFF(c.Get("X-Forwarded-For"), true); ip != "" {
				ipv6 = ip
			}
		}
		return ipv4, ipv6
	}

	// X-Forwarded-For can contain a list of IPs - the first one is the client
	xff := c.Get("X-Forwarded-For")
	if xff != "" {
		xffList := strings.Split(xff, ",")
		clientIP := strings.TrimSpace(xffList[0])
		if strings.Contains(clientIP, ":") {
			ipv6 = clientIP
			ipv4 = findAddressInXFF(xff, false)
		} else {
			ipv4 = clientIP
			ipv6 = findAddressInXFF(xff, true)
		}
		if ipv4 != "" || ipv6 != "" {
			return ipv4, ipv6
		}
	}

	ipAddr := c.IP()
	if strings.Contains(ipAddr, ":") {
		// ::ffff: prefixed addresses are IPv4 mapped into IPv6
		if strings.Contains(ipAddr, ".") && strings.HasPrefix(ipAddr, "::ffff:") {
			ipv4 = strings.TrimPrefix(ipAddr, "::ffff:")
		} else {
			ipv6 = ipAddr
			realIPv4 := c.Get("X-Real-IP")
			if realIPv4 != "" && !strings.Contains(realIPv4, ":") {
				ipv4 = realIPv4
			}
		}
	} else {
		ipv4 = ipAddr
		realIPv6 := c.Get("X-Real-IP")
		if realIPv6 != "" && strings.Contains(realIPv6, ":") {
			ipv6 = realIPv6
		}
	}

	return ipv4, ipv6
}

// findAddressInXFF scans an X-Forwarded-For list for the first address of the
// requested family (wantV6 true for IPv6).
func findAddressInXFF(xff string, wantV6 bool) string {
	for _, ip := range strings.Split(xff, ",") {
		ip = strings.TrimSpace(ip)
		if ip == "" {
			continue
		}
		if strings.Contains(ip, ":") == wantV6 {
			return ip
		}
	}
	return ""
}

// stripHTMLAndTruncate flattens HTML content into a short plain-text summary
// for OpenGraph descriptions.
func stripHTMLAndTruncate(html string, maxLength int) string {
	text := strings.ReplaceAll(html, "<br>", " ")
	text = strings.ReplaceAll(text, "</p>", " ")
	text = strings.ReplaceAll(text, "</div>", " ")

	var result strings.Builder
	var inTag bool
	for _, r := range text {
		if r == '<' {
			inTag = true
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}

	stripped := strings.TrimSpace(result.String())
	if len(stripped) <= maxLength {
		return stripped
	}

	return stripped[:maxLength]
}
