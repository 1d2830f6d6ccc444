package responder

const (
	phoneLine    = "Phone / WhatsApp: +91 93356 24540"
	emailLine    = "Email: mrasr620107@gmail.com"
	telegramLine = "Telegram: https://t.me/X_INDUSTRIES216"

	serviceList = "1. AI Calling Agents\n" +
		"2. Marketing & CRM Automation\n" +
		"3. UGC Ads & Growth Support\n" +
		"4. Lead Generation Automation\n" +
		"5. Managed / Freelancing Services"
)

// MenuPrompt is the service menu shown on welcome and whenever nothing matches.
const MenuPrompt = "May I know which service you are looking for?\n\n" + serviceList

// WelcomeMessage opens every new conversation.
const WelcomeMessage = "Welcome to Xai-industries.\n\n" + MenuPrompt

// Rule names, in priority order.
const (
	RuleContact         = "contact"
	RuleAICallingAgents = "ai_calling_agents"
	RuleMarketingCRM    = "marketing_crm"
	RuleUGCAds          = "ugc_ads"
	RuleLeadGeneration  = "lead_generation"
	RuleManagedServices = "managed_services"
	RulePricing         = "pricing"
	RuleGreetingHindi   = "greeting_hindi"
	RuleGreeting        = "greeting"
	RuleAbout           = "about"
	RuleOffTopic        = "off_topic"
	RuleDemo            = "demo"
	RuleMenu            = "menu"
)

// DefaultRules returns the Xai-industries rule table. The first rule whose
// terms match wins, so the order of the slice is the priority order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     RuleContact,
			Terms:    []string{"contact", "phone", "email", "whatsapp", "telegram", "reach", "number"},
			Response: phoneLine + "\n" + emailLine + "\n" + telegramLine,
		},
		{
			Name:  RuleAICallingAgents,
			Terms: []string{"1", "ai calling", "calling agent", "voice", "phone bot", "call agent"},
			Response: "AI Calling Agents:\n\n" +
				"Handles inbound/outbound calls automatically. Qualifies leads, follows up, answers queries. Works 24x7 without salary or breaks.\n\n" +
				"Benefits: Reduces manpower cost, improves response speed, never misses a call.",
		},
		{
			Name:  RuleMarketingCRM,
			Terms: []string{"2", "marketing", "crm", "automation"},
			Response: "Marketing & CRM Automation:\n\n" +
				"Automates your marketing workflows, email sequences, lead nurturing, and CRM updates.\n\n" +
				"Benefits: Saves time, reduces manual errors, improves lead conversion, scales effortlessly.",
		},
		{
			Name:  RuleUGCAds,
			Terms: []string{"3", "ugc", "ads", "growth"},
			Response: "UGC Ads & Growth Support:\n\n" +
				"Creates user-generated content style ads and manages growth campaigns for better engagement.\n\n" +
				"Benefits: Higher conversion rates, authentic content, cost-effective advertising.",
		},
		{
			Name:  RuleLeadGeneration,
			Terms: []string{"4", "lead generation", "lead gen", "leads"},
			Response: "Lead Generation Automation:\n\n" +
				"Automated systems to find, qualify, and nurture leads through multiple channels.\n\n" +
				"Benefits: Consistent lead flow, reduced acquisition cost, scalable pipeline.",
		},
		{
			Name:  RuleManagedServices,
			Terms: []string{"5", "managed", "freelance", "team", "outsource", "hire"},
			Response: "Managed / Freelancing Services:\n\n" +
				"On-demand skilled professionals and managed teams for your projects.\n\n" +
				"Benefits: Flexible scaling, no hiring overhead, expert resources when needed.",
		},
		{
			Name:  RulePricing,
			Terms: []string{"price", "cost", "pricing", "how much", "rate", "fee", "charge"},
			Response: "Our management team can guide you better after understanding your requirements.\n\n" +
				phoneLine + "\n" + emailLine,
		},
		{
			Name:  RuleGreetingHindi,
			Terms: []string{"namaste", "namaskar", "kaise ho", "kya hal"},
			Response: "Namaste! Xai-industries mein aapka swagat hai.\n\n" +
				"Aap kis service ke baare mein jaanna chahte hain?\n\n" + serviceList,
		},
		{
			Name:     RuleGreeting,
			Terms:    []string{"hi", "hello", "hey"},
			Response: "Hello! Welcome to Xai-industries.\n\n" + MenuPrompt,
		},
		{
			Name:  RuleAbout,
			Terms: []string{"what do you do", "about", "services", "company"},
			Response: "Xai-industries provides AI automation and consulting services.\n\n" +
				"Our services:\n" + serviceList + "\n\nWhich one interests you?",
		},
		{
			Name:  RuleOffTopic,
			Terms: []string{"weather", "joke", "game", "movie", "music", "food"},
			Response: "For this query, it would be best to speak directly with our management team.\n\n" +
				phoneLine + "\n" + emailLine,
		},
		{
			Name:     RuleDemo,
			Terms:    []string{"demo", "trial", "meeting", "consultation", "start", "talk", "discuss"},
			Response: "Contact us to discuss your requirements:\n\n" + phoneLine + "\n" + emailLine + "\n" + telegramLine,
		},
	}
}

// DefaultFallback is returned when no rule matches.
func DefaultFallback() Rule {
	return Rule{Name: RuleMenu, Response: MenuPrompt}
}
