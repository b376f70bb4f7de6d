// Package clientip extracts the client address from HTTP requests.
//
// Headers are checked in this order:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For, leftmost entry
//  4. X-Real-IP
//  5. RemoteAddr
//
// Addresses are parsed and normalized with net.ParseIP. Unspecified addresses
// (0.0.0.0, ::) and malformed values are skipped. When nothing parses the raw
// RemoteAddr is returned, so GetIP never returns an empty string for a real
// server request.
//
//	ip := clientip.GetIP(r)
package clientip
