package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/coderr/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SwaggerConfig holds configuration for Swagger endpoint protection
type SwaggerConfig struct {
	Enabled    bool
	AllowedIPs []string // single IPs or CIDRs; empty allows everyone
}

// SwaggerProtection hides the docs when disabled (404) and enforces the IP allow list (403)
func SwaggerProtection(cfg SwaggerConfig) gin.HandlerFunc {
	allowedIPs, allowedNets := parseAllowList(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			abortWithError(c, http.StatusNotFound, dto.ErrCodeNotFound, "Not found.")
			return
		}
		if len(cfg.AllowedIPs) > 0 && !isIPAllowed(net.ParseIP(c.ClientIP()), allowedIPs, allowedNets) {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden,
				"Access to API documentation is restricted.")
			return
		}
		c.Next()
	}
}

func parseAllowList(entries []string) ([]net.IP, []*net.IPNet) {
	var ips []net.IP
	var nets []*net.IPNet
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				nets = append(nets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			ips = append(ips, ip)
		}
	}
	return ips, nets
}

func isIPAllowed(ip net.IP, allowedIPs []net.IP, allowedNets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range allowedIPs {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range allowedNets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
