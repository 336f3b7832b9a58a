package auth

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/mc-auth/grants"
	"github.com/jrsteele09/mc-auth/oauthmodel"
)

// responseMode is the fragment for the implicit flow and the query otherwise.
func responseMode(rt grants.ResponseType) oauthmodel.ResponseModeType {
	if rt == grants.ResponseTypeToken {
		return oauthmodel.FragmentResponseMode
	}
	return oauthmodel.QueryResponseMode
}

type param struct {
	key   string
	value *string
}

func p(key, value string) param {
	return param{key: key, value: &value}
}

// appendQuery adds params to the query string of base, keeping any query the
// client registered. Params with a nil value are omitted.
func appendQuery(base string, params ...param) string {
	base = stripFragment(base)
	encoded := encodeParams(params)
	if encoded == "" {
		return base
	}
	switch {
	case !strings.Contains(base, "?"):
		return base + "?" + encoded
	case strings.HasSuffix(base, "?"), strings.HasSuffix(base, "&"):
		return base + encoded
	default:
		return base + "&" + encoded
	}
}

// appendFragment replaces the fragment of base with params.
func appendFragment(base string, params ...param) string {
	return stripFragment(base) + "#" + encodeParams(params)
}

func encodeParams(params []param) string {
	var sb strings.Builder
	for _, prm := range params {
		if prm.value == nil {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(escape(prm.key))
		sb.WriteByte('=')
		sb.WriteString(escape(*prm.value))
	}
	return sb.String()
}

// escape matches the percent-encoding browsers apply to URL components,
// where a space is %20 rather than '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func stripFragment(u string) string {
	if i := strings.IndexByte(u, '#'); i >= 0 {
		return u[:i]
	}
	return u
}
