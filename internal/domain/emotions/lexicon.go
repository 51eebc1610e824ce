package emotions

type lexiconEntry struct {
	emotion Emotion
	words   []string
}

// defaultLexicon: el orden define el desempate entre emociones con los mismos hits.
// Las raíces en it/es colapsan a la emoción canónica.
var defaultLexicon = []lexiconEntry{
	{Happy, []string{
		"happy", "joy", "wag", "smil", "content", "cheerful",
		"felic", "contento", "allegr", "scodinzol",
		"feliz", "alegr", "mueve la cola",
	}},
	{Calm, []string{
		"calm", "quiet", "peaceful", "rest", "sleep", "relax", "serene",
		"tranquill", "rilass", "dorm", "sereno",
		"tranquil", "relaj", "duerm", "descans",
	}},
	{Anxious, []string{
		"anxious", "anxiety", "nervous", "worr", "stress", "pacing", "trembl", "whin", "hiding",
		"ansi", "nervos", "preoccup", "trem", "nascond",
		"ansied", "estres", "escond", "tembl",
	}},
	{Excited, []string{
		"excit", "jump", "zoomies", "energetic", "hyper", "thrill",
		"eccitat", "salt", "energic",
		"emocion", "brinc",
	}},
	{Sad, []string{
		"sad", "lonely", "depress", "letharg", "mop", "withdrawn", "cry",
		"triste", "solo", "abbattut", "piang",
		"tristeza", "decaid", "llor",
	}},
	{Aggressive, []string{
		"aggress", "growl", "bit", "snarl", "hiss", "attack", "bark at",
		"aggressiv", "ringhi", "mord", "soffi",
		"agresiv", "gruñ", "muerd", "ataca",
	}},
	{Playful, []string{
		"play", "toy", "fetch", "chase", "ball", "game",
		"gioc", "palla", "rincorr",
		"jug", "pelota", "juguet",
	}},
}
