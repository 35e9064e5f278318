package logger

import (
	"regexp"
)

const (
	passwordPattern      = `(?i)(password|passwd|pwd)([\'\"\s:=]+)([^\s\'\",&]{3,})`
	authorizationPattern = `(?i)(authorization)([\'\"\s:=]+)(basic|bearer)\s+([a-z0-9=/_\-\+\.]{8,})`
	bearerPattern        = `(?i)(bearer)\s+([a-z0-9_\-]+\.[a-z0-9_\-]+\.[a-z0-9_\-]+)` // pragma: allowlist secret
	tokenPattern         = `(?i)(token|secret|account_key|accountkey)([\'\"\s:=]+)([a-z0-9=/_\-\+\.]{8,})`
	urlUserinfoPattern   = `([a-zA-Z][a-zA-Z0-9+.\-]*://[^/:@\s]+):([^@/\s]+)@`
	awsKeyPattern        = `(?i)(aws_access_key_id|aws_secret_access_key|access_key_id|secret_access_key)([\'\"\s:=]+)([a-z0-9/+]{16,})`
	sasSignaturePattern  = `(?i)(sig|signature|X-Amz-Signature|X-Goog-Signature)=([a-z0-9%/+]{16,})`
	privateKeyPattern    = `(?s)-----BEGIN ([A-Z ]*)PRIVATE KEY-----.*?-----END ([A-Z ]*)PRIVATE KEY-----` // pragma: allowlist secret
)

var (
	passwordRegexp      = regexp.MustCompile(passwordPattern)
	authorizationRegexp = regexp.MustCompile(authorizationPattern)
	bearerRegexp        = regexp.MustCompile(bearerPattern)
	tokenRegexp         = regexp.MustCompile(tokenPattern)
	urlUserinfoRegexp   = regexp.MustCompile(urlUserinfoPattern)
	awsKeyRegexp        = regexp.MustCompile(awsKeyPattern)
	sasSignatureRegexp  = regexp.MustCompile(sasSignaturePattern)
	privateKeyRegexp    = regexp.MustCompile(privateKeyPattern)
)

type secretmasker string

func (s secretmasker) maskPrivateKey() secretmasker {
	return secretmasker(privateKeyRegexp.ReplaceAllString(s.String(), "-----BEGIN ${1}PRIVATE KEY-----****-----END ${2}PRIVATE KEY-----")) // pragma: allowlist secret
}

func (s secretmasker) maskAuthorization() secretmasker {
	return secretmasker(authorizationRegexp.ReplaceAllString(s.String(), "$1${2}$3 ****"))
}

func (s secretmasker) maskBearer() secretmasker {
	return secretmasker(bearerRegexp.ReplaceAllString(s.String(), "$1 ****"))
}

func (s secretmasker) maskURLUserinfo() secretmasker {
	return secretmasker(urlUserinfoRegexp.ReplaceAllString(s.String(), "$1:****@"))
}

func (s secretmasker) maskPassword() secretmasker {
	return secretmasker(passwordRegexp.ReplaceAllString(s.String(), "$1${2}****"))
}

func (s secretmasker) maskToken() secretmasker {
	return secretmasker(tokenRegexp.ReplaceAllString(s.String(), "$1${2}****"))
}

func (s secretmasker) maskAwsKey() secretmasker {
	return secretmasker(awsKeyRegexp.ReplaceAllString(s.String(), "$1${2}****"))
}

func (s secretmasker) maskSasSignature() secretmasker {
	return secretmasker(sasSignatureRegexp.ReplaceAllString(s.String(), "$1=****"))
}

func (s secretmasker) String() string {
	return string(s)
}

// MaskSecrets replaces credentials found in text with ****.
func MaskSecrets(text string) string {
	return secretmasker(text).
		maskPrivateKey().
		maskAuthorization().
		maskBearer().
		maskURLUserinfo().
		maskPassword().
		maskToken().
		maskAwsKey().
		maskSasSignature().
		String()
}
