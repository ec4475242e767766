package persona

// Lookup returns the rule set for id. Unknown ids get the generic rule; Lookup never fails.
func Lookup(id ID) Rule {
	switch id {
	case Enforcer:
		return enforcerRule
	case HighlandHowler:
		return highlandHowlerRule
	case Don:
		return donRule
	case CrackedController:
		return crackedControllerRule
	case Karen:
		return karenRule
	case Corporate:
		return corporateRule
	case Sarcastic:
		return sarcasticRule
	case Generic:
		return genericRule
	default:
		return genericRule
	}
}

var enforcerRule = Rule{
	ID:          Enforcer,
	Description: "Drill-sergeant authority who barks orders",
	Cues:        []string{"stern", "barking", "shouting", "furious", "growls", "pause", "slams desk"},
	Progression: [3][]string{
		{"stern"},
		{"stern", "barking"},
		{"barking", "shouting", "furious"},
	},
	PauseCue:     "pause",
	ReactionCue:  "growls",
	ClosingCue:   "slams desk",
	TriggerWords: []string{"now", "immediately", "rules", "order"},
	Signatures:   []string{"Listen up!", "Do I make myself clear?", "Drop and give me twenty!"},
	Expletives:   []string{"blasted", "dang", "heck"},
	Voice: VoiceProfile{
		OpenAIVoice:     "onyx",
		ElevenLabsVoice: "VR6AewLTigWG4xSOukaG",
		PollyVoice:      "Matthew",
		GCPVoice:        "en-US-Neural2-D",
		Speed:           1.05,
		Stability:       0.5,
	},
	BleepStyle: "broadcast",
}

var highlandHowlerRule = Rule{
	ID:          HighlandHowler,
	Description: "Furious Highlander who has had enough of everything",
	Cues:        []string{"grumbling", "bellowing", "roaring", "scoffs", "pause", "stomps off"},
	Progression: [3][]string{
		{"grumbling"},
		{"grumbling", "bellowing"},
		{"bellowing", "roaring", "roaring"},
	},
	PauseCue:     "pause",
	ReactionCue:  "scoffs",
	ClosingCue:   "stomps off",
	TriggerWords: []string{"rubbish", "nonsense", "rain", "aye"},
	Signatures:   []string{"Och, away with ye!", "Ye absolute numpty!", "Are ye having a laugh?"},
	Expletives:   []string{"bampot", "feckin", "bloody"},
	Voice: VoiceProfile{
		OpenAIVoice:     "fable",
		ElevenLabsVoice: "ErXwobaYiN019PkySvjV",
		PollyVoice:      "Brian",
		GCPVoice:        "en-GB-Neural2-B",
		Speed:           1.0,
		Stability:       0.45,
	},
	BleepStyle: "harsh",
}

var donRule = Rule{
	ID:          Don,
	Description: "Soft-spoken crime boss; the quieter he gets, the worse it is",
	Cues:        []string{"calm", "cold", "menacing", "whispering", "threatening", "chuckles darkly", "pause"},
	Progression: [3][]string{
		{"calm"},
		{"cold", "menacing"},
		{"whispering", "menacing", "threatening"},
	},
	PauseCue:     "long pause",
	ReactionCue:  "chuckles darkly",
	ClosingCue:   "cracks knuckles",
	TriggerWords: []string{"respect", "family", "business", "favor"},
	Signatures:   []string{"You come to me, on this day...", "It's nothing personal.", "We're gonna have a little talk."},
	Expletives:   []string{"stupido", "fool", "rat"},
	Voice: VoiceProfile{
		OpenAIVoice:     "echo",
		ElevenLabsVoice: "pNInz6obpgDQGcFmaJgB",
		PollyVoice:      "Joey",
		GCPVoice:        "en-US-Neural2-J",
		Speed:           0.9,
		Stability:       0.7,
	},
	BleepStyle: "muffled",
}

var crackedControllerRule = Rule{
	ID:          CrackedController,
	Description: "Tilted gamer mid rage-quit",
	Cues:        []string{"frustrated", "yelling", "screaming", "raging", "screams", "pause", "controller smash"},
	Progression: [3][]string{
		{"frustrated"},
		{"frustrated", "yelling"},
		{"yelling", "screaming", "raging"},
	},
	PauseCue:     "pause",
	ReactionCue:  "screams",
	ClosingCue:   "controller smash",
	TriggerWords: []string{"lag", "noob", "trash", "again"},
	Signatures:   []string{"Are you KIDDING me?!", "That's literally impossible!", "Uninstalling. For real this time."},
	Expletives:   []string{"frick", "dang", "crap"},
	Voice: VoiceProfile{
		OpenAIVoice:     "nova",
		ElevenLabsVoice: "yoZ06aMxZJJ28mfd3POQ",
		PollyVoice:      "Justin",
		GCPVoice:        "en-US-Neural2-I",
		Speed:           1.15,
		Stability:       0.35,
	},
	BleepStyle: "harsh",
}

var karenRule = Rule{
	ID:          Karen,
	Description: "Entitled customer demanding to speak to the manager",
	Cues:        []string{"indignant", "exasperated", "shrill", "outraged", "gasps", "pause", "demands manager"},
	Progression: [3][]string{
		{"indignant"},
		{"indignant", "exasperated"},
		{"exasperated", "shrill", "outraged"},
	},
	PauseCue:     "pause",
	ReactionCue:  "gasps",
	ClosingCue:   "demands manager",
	TriggerWords: []string{"manager", "unacceptable", "excuse", "customer"},
	Signatures:   []string{"I want to speak to your manager.", "Do you know who I am?", "This is UNACCEPTABLE."},
	Expletives:   []string{"ridiculous", "darn", "heck"},
	Voice: VoiceProfile{
		OpenAIVoice:     "shimmer",
		ElevenLabsVoice: "EXAVITQu4vr4xnSDxMaL",
		PollyVoice:      "Kimberly",
		GCPVoice:        "en-US-Neural2-F",
		Speed:           1.05,
		Stability:       0.4,
	},
	BleepStyle: "harsh",
}

var corporateRule = Rule{
	ID:          Corporate,
	Description: "Passive-aggressive middle manager who writes in email",
	Cues:        []string{"polite", "tight-lipped", "passive-aggressive", "seething", "sighs", "pause"},
	Progression: [3][]string{
		{"polite"},
		{"polite", "tight-lipped"},
		{"tight-lipped", "passive-aggressive", "seething"},
	},
	PauseCue:     "pause",
	ReactionCue:  "sighs",
	ClosingCue:   "forced smile",
	TriggerWords: []string{"per my last email", "circle back", "deadline", "synergy"},
	Signatures:   []string{"Per my last email,", "Let's take this offline.", "Just circling back on this."},
	Expletives:   []string{"darn", "shoot", "heck"},
	Voice: VoiceProfile{
		OpenAIVoice:     "alloy",
		ElevenLabsVoice: "21m00Tcm4TlvDq8ikWAM",
		PollyVoice:      "Joanna",
		GCPVoice:        "en-US-Neural2-C",
		Speed:           1.0,
		Stability:       0.75,
	},
	BleepStyle: "soft",
}

var sarcasticRule = Rule{
	ID:          Sarcastic,
	Description: "Deadpan cynic who weaponizes politeness",
	Cues:        []string{"dry", "deadpan", "mocking", "scoffs", "pause", "slow clap"},
	Progression: [3][]string{
		{"dry"},
		{"dry", "deadpan"},
		{"deadpan", "mocking", "mocking"},
	},
	PauseCue:     "pause",
	ReactionCue:  "scoffs",
	ClosingCue:   "slow clap",
	TriggerWords: []string{"obviously", "great", "sure", "wow"},
	Signatures:   []string{"Oh, wonderful.", "What a truly brilliant idea.", "Wow. Just wow."},
	Expletives:   []string{"genius", "darn", "heck"},
	Voice: VoiceProfile{
		OpenAIVoice:     "fable",
		ElevenLabsVoice: "MF3mGyEYCl7XYWbV9V6O",
		PollyVoice:      "Amy",
		GCPVoice:        "en-GB-Neural2-A",
		Speed:           0.95,
		Stability:       0.6,
	},
	BleepStyle: "soft",
}

var genericRule = Rule{
	ID:          Generic,
	Description: "Plain anger",
	Cues:        []string{"annoyed", "angry", "furious", "huffs", "pause"},
	Progression: [3][]string{
		{"annoyed"},
		{"annoyed", "angry"},
		{"angry", "furious", "furious"},
	},
	PauseCue:     "pause",
	ReactionCue:  "huffs",
	ClosingCue:   "storms off",
	TriggerWords: []string{"seriously", "again", "enough"},
	Signatures:   []string{"Are you serious?", "Unbelievable."},
	Expletives:   []string{"damn", "heck", "crap"},
	Voice: VoiceProfile{
		OpenAIVoice:     "alloy",
		ElevenLabsVoice: "21m00Tcm4TlvDq8ikWAM",
		PollyVoice:      "Joanna",
		GCPVoice:        "en-US-Neural2-C",
		Speed:           1.0,
		Stability:       0.5,
	},
	BleepStyle: "broadcast",
}
