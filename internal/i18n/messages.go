/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package i18n

// Message keys used by the UI.
const (
	KeyAppTagline      = "appTagline"
	KeyHeroTitle       = "heroTitle"
	KeyHeroSubtitle    = "heroSubtitle"
	KeyFeatureDiagnose = "featureDiagnose"
	KeyFeatureVoice    = "featureVoice"
	KeyFeatureLanguage = "featureLanguage"
	KeyGetStarted      = "getStarted"
	KeyLocationPrompt  = "locationPrompt"
	KeyLocationHint    = "locationHint"
	KeyLocationSaved   = "locationSaved"
	KeyLocationInvalid = "locationInvalid"
	KeyWelcome         = "welcome"
	KeyAIIsThinking    = "aiIsThinking"
	KeyChatPlaceholder = "chatPlaceholder"
	KeyAlertNoMic      = "alertNoMicSupport"
	KeyAlertNoInput    = "alertNoInput"
	KeyAlertNoAudio    = "alertNoAudio"
	KeyListen          = "listen"
	KeyListening       = "listening"
	KeyPause           = "pause"
	KeyConnectionError = "connectionError"
	KeyNoResponse      = "noResponse"
	KeyNoSpeech        = "noSpeech"
	KeyAutoplayOn      = "autoplayOn"
	KeyAutoplayOff     = "autoplayOff"
	KeyImageAttached   = "imageAttached"
	KeyImageCleared    = "imageCleared"
	KeyImageError      = "imageError"
	KeyLanguageChanged = "languageChanged"
	KeyHelp            = "help"
	KeyYou             = "you"
	KeyAssistant       = "assistant"
)

var builtin = map[string]map[string]string{
	"en": {
		KeyAppTagline:      "Your farming companion",
		KeyHeroTitle:       "Smart help for every field",
		KeyHeroSubtitle:    "Ask about crops, pests and soil. Send a leaf photo and get a diagnosis in your own language.",
		KeyFeatureDiagnose: "Photo diagnosis of plant diseases",
		KeyFeatureVoice:    "Speak your question, hear the answer",
		KeyFeatureLanguage: "English, Hindi and Telugu",
		KeyGetStarted:      "Press enter to start chatting",
		KeyLocationPrompt:  "Share your location for local advice?",
		KeyLocationHint:    "Type lat,lon and press enter, or esc to skip",
		KeyLocationSaved:   "Location saved",
		KeyLocationInvalid: "Could not read that location. Use lat,lon",
		KeyWelcome:         "How can I help your farm today?",
		KeyAIIsThinking:    "AI is thinking...",
		KeyChatPlaceholder: "Ask about your crops...",
		KeyAlertNoMic:      "Voice input is not supported on this system.",
		KeyAlertNoInput:    "Please enter a message or attach an image.",
		KeyAlertNoAudio:    "Audio playback is not available on this system.",
		KeyListen:          "Listen",
		KeyListening:       "Listening...",
		KeyPause:           "Pause",
		KeyConnectionError: "Connection Error: Could not reach the backend. Is it running?",
		KeyNoResponse:      "Sorry, I couldn't get a response.",
		KeyNoSpeech:        "No speech was heard. Try again.",
		KeyAutoplayOn:      "Autoplay on",
		KeyAutoplayOff:     "Autoplay off",
		KeyImageAttached:   "Image attached: %s",
		KeyImageCleared:    "Image removed",
		KeyImageError:      "Cannot use that image: %v",
		KeyLanguageChanged: "Language: %s",
		KeyHelp:            "enter send • ctrl+r voice • ctrl+a autoplay • ctrl+p play • ctrl+l language • /image <path> • esc quit",
		KeyYou:             "You",
		KeyAssistant:       "Krishi Mitra",
	},
	"hi": {
		KeyAppTagline:      "आपका खेती साथी",
		KeyHeroTitle:       "हर खेत के लिए समझदार मदद",
		KeyHeroSubtitle:    "फसल, कीट और मिट्टी के बारे में पूछें। पत्ते की फोटो भेजें और अपनी भाषा में निदान पाएं।",
		KeyFeatureDiagnose: "फोटो से पौधों के रोग की पहचान",
		KeyFeatureVoice:    "बोलकर पूछें, जवाब सुनें",
		KeyFeatureLanguage: "अंग्रेज़ी, हिंदी और तेलुगु",
		KeyGetStarted:      "चैट शुरू करने के लिए एंटर दबाएं",
		KeyLocationPrompt:  "स्थानीय सलाह के लिए अपना स्थान साझा करें?",
		KeyLocationHint:    "lat,lon लिखकर एंटर दबाएं, या छोड़ने के लिए esc",
		KeyLocationSaved:   "स्थान सहेजा गया",
		KeyLocationInvalid: "स्थान समझ नहीं आया। lat,lon लिखें",
		KeyWelcome:         "आज मैं आपके खेत की क्या मदद करूं?",
		KeyAIIsThinking:    "एआई सोच रहा है...",
		KeyChatPlaceholder: "अपनी फसलों के बारे में पूछें...",
		KeyAlertNoMic:      "इस सिस्टम पर आवाज़ इनपुट उपलब्ध नहीं है।",
		KeyAlertNoInput:    "कृपया संदेश लिखें या चित्र जोड़ें।",
		KeyAlertNoAudio:    "इस सिस्टम पर ऑडियो नहीं चल सकता।",
		KeyListen:          "सुनें",
		KeyListening:       "सुन रहा है...",
		KeyPause:           "रोकें",
		KeyConnectionError: "कनेक्शन त्रुटि: सर्वर तक नहीं पहुंच सके। क्या वह चल रहा है?",
		KeyNoResponse:      "क्षमा करें, मुझे जवाब नहीं मिल सका।",
		KeyNoSpeech:        "कोई आवाज़ नहीं सुनी। फिर से कोशिश करें।",
		KeyAutoplayOn:      "ऑटोप्ले चालू",
		KeyAutoplayOff:     "ऑटोप्ले बंद",
		KeyImageAttached:   "चित्र जोड़ा गया: %s",
		KeyImageCleared:    "चित्र हटाया गया",
		KeyImageError:      "यह चित्र उपयोग नहीं हो सकता: %v",
		KeyLanguageChanged: "भाषा: %s",
		KeyYou:             "आप",
	},
	"te": {
		KeyAppTagline:      "మీ వ్యవసాయ సహాయకుడు",
		KeyHeroTitle:       "ప్రతి పొలానికి తెలివైన సహాయం",
		KeyHeroSubtitle:    "పంటలు, తెగుళ్లు, నేల గురించి అడగండి. ఆకు ఫోటో పంపి మీ భాషలో నిర్ధారణ పొందండి.",
		KeyFeatureDiagnose: "ఫోటోతో మొక్కల వ్యాధి గుర్తింపు",
		KeyFeatureVoice:    "మాట్లాడి అడగండి, సమాధానం వినండి",
		KeyFeatureLanguage: "ఇంగ్లీష్, హిందీ, తెలుగు",
		KeyGetStarted:      "చాట్ ప్రారంభించడానికి ఎంటర్ నొక్కండి",
		KeyLocationPrompt:  "స్థానిక సలహా కోసం మీ స్థానాన్ని పంచుకోవాలా?",
		KeyLocationHint:    "lat,lon టైప్ చేసి ఎంటర్ నొక్కండి, దాటవేయడానికి esc",
		KeyLocationSaved:   "స్థానం సేవ్ చేయబడింది",
		KeyLocationInvalid: "స్థానం అర్థం కాలేదు. lat,lon వాడండి",
		KeyWelcome:         "ఈ రోజు మీ పొలానికి ఎలా సహాయం చేయగలను?",
		KeyAIIsThinking:    "AI ఆలోచిస్తోంది...",
		KeyChatPlaceholder: "మీ పంటల గురించి అడగండి...",
		KeyAlertNoMic:      "ఈ సిస్టమ్‌లో వాయిస్ ఇన్‌పుట్ అందుబాటులో లేదు.",
		KeyAlertNoInput:    "దయచేసి సందేశం రాయండి లేదా చిత్రం జత చేయండి.",
		KeyAlertNoAudio:    "ఈ సిస్టమ్‌లో ఆడియో ప్లే చేయలేము.",
		KeyListen:          "వినండి",
		KeyListening:       "వింటోంది...",
		KeyPause:           "ఆపండి",
		KeyConnectionError: "కనెక్షన్ లోపం: సర్వర్‌ను చేరుకోలేకపోయాం. అది నడుస్తోందా?",
		KeyNoResponse:      "క్షమించండి, సమాధానం రాలేదు.",
		KeyNoSpeech:        "మాట వినిపించలేదు. మళ్లీ ప్రయత్నించండి.",
		KeyAutoplayOn:      "ఆటోప్లే ఆన్",
		KeyAutoplayOff:     "ఆటోప్లే ఆఫ్",
		KeyImageAttached:   "చిత్రం జత చేయబడింది: %s",
		KeyImageCleared:    "చిత్రం తీసివేయబడింది",
		KeyImageError:      "ఈ చిత్రాన్ని వాడలేము: %v",
		KeyLanguageChanged: "భాష: %s",
		KeyYou:             "మీరు",
	},
}
