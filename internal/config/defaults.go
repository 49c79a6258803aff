package config

const (
	defaultConfigPath              = "~/.config/equalmedia/config.toml"
	defaultLogDir                  = "~/.local/share/equalmedia/logs"
	defaultNarrationDir            = "~/.local/share/equalmedia/narration"
	defaultSocketName              = "equalmedia.sock"
	defaultAPIBind                 = "127.0.0.1:7491"
	defaultSpeechBaseURL           = "https://speech.googleapis.com/v1"
	defaultTTSBaseURL              = "https://texttospeech.googleapis.com/v1"
	defaultLanguageCode            = "en-US"
	defaultVoiceName               = "en-US-Standard-C"
	defaultSampleRateHertz         = 44100
	defaultGoogleTimeoutSeconds    = 60
	defaultCaptionFallbackWindow   = 5.0
	defaultNarrationSecondsPerChar = 0.06
	defaultAvatarX                 = 10
	defaultAvatarY                 = 200
	defaultAvatarWidth             = 200
	defaultAvatarHeight            = 200
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	envGoogleAPIKey                = "GOOGLE_CLOUD_API_KEY"
	envGoogleProject               = "GOOGLE_CLOUD_PROJECT"
	envGoogleProjectLegacy         = "GOOGLE_CLOUD_PROJECT_ID"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:       defaultLogDir,
			NarrationDir: defaultNarrationDir,
			APIBind:      defaultAPIBind,
		},
		Google: Google{
			SpeechBaseURL:   defaultSpeechBaseURL,
			TTSBaseURL:      defaultTTSBaseURL,
			LanguageCode:    defaultLanguageCode,
			VoiceName:       defaultVoiceName,
			SampleRateHertz: defaultSampleRateHertz,
			TimeoutSeconds:  defaultGoogleTimeoutSeconds,
		},
		Captions: Captions{
			FallbackWindowSeconds: defaultCaptionFallbackWindow,
		},
		Narration: Narration{
			SecondsPerCharacter: defaultNarrationSecondsPerChar,
		},
		Avatar: Avatar{
			X:      defaultAvatarX,
			Y:      defaultAvatarY,
			Width:  defaultAvatarWidth,
			Height: defaultAvatarHeight,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
