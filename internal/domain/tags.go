package domain

// RootCauseUncategorized is the sentinel for "not yet classified". It is
// distinct from every real classification and never treated as sticky.
const RootCauseUncategorized = "Uncategorized"

// RootCauses is the closed set of primary root-cause classifications.
var RootCauses = []string{
	"Leak / Deflates Overnight",
	"Valve Leak",
	"Internal Weld Leak",
	"Doesn't Hold Air All Night",
	"Valve Problem",
	"Valve Flap Sealed (Shipping Compression)",
	"Inflation Difficulty",
	"Slow Inflate/Deflate",
	"Comfort",
	"Bubble / Air Pocket",
	"Noise",
	"Shipping Delay",
	"Missing Item",
	"Accessory Missing",
	"Damaged on Arrival",
	"Warranty/Registration",
	"Returns/Refund",
	RootCauseUncategorized,
}

// StandardPositives enumerates customer positive-feedback tags.
var StandardPositives = []string{
	"Excellent Comfort & Support",
	"Holds Air All Night",
	"Easy & Fast Inflation / Deflation",
	"Lightweight & Packable",
	"Durable Materials",
	"Quiet / Low Noise",
	"High Stability / Non-Slip",
	"Good Insulation (Warm)",
	"Comfortable Thickness / True to Size",
	"Great Value for Money",
	"Easy Rolling / Good Stuff Sack",
	"Professional Design & Finish",
	"Useful Accessories",
	"Excellent Customer Service / Warranty",
	"Versatile Use (Camping / Hiking / Travel)",
}

// StandardNegatives enumerates customer negative-feedback tags.
var StandardNegatives = []string{
	"Air Leaks / Punctures",
	"Valve Issues",
	"Difficult Inflation / Deflation",
	"Uncomfortable / Poor Support",
	"Size / Thickness Mismatch",
	"Slipping / Poor Grip",
	"Noise During Movement",
	"Poor Insulation (Cold)",
	"Material / Durability Issues",
	"Heavy / Bulky When Packed",
	"Hard to Roll / Stuff Sack Issues",
	"Odor / Chemical Smell",
	"Price / Value Concerns",
	"After-Sales / Warranty Issues",
	"Missing or Unhelpful Accessories",
}

// CustomerPainPoints enumerates recurring customer pain-point tags.
var CustomerPainPoints = []string{
	"Ruined sleep / discomfort overnight",
	"Side-sleeper incompatibility",
	"Portability expectations not met (pack size/shape)",
	"Frustration with inflation setup (seal sensitivity)",
	"Comfort vs. expectation gap (ground feel)",
}

// AgentPositiveThemes enumerates agent-reply strength tags.
var AgentPositiveThemes = []string{
	"Warm & Empathetic Tone",
	"Acknowledgment of Customer Experience",
	"Clear Resolution or Action Plan",
	"Reinforcing Brand Identity",
	"Clarity and Simplicity",
	"Personalization",
	"Product Knowledge Displayed",
	"Appreciation and Gratitude",
	"Proactive Assistance",
	"Positive Reinforcement",
}

// AgentNegativeThemes enumerates agent-reply weakness tags.
var AgentNegativeThemes = []string{
	"Cold or Robotic Tone",
	"Lack of Empathy",
	"Missing Action Plan",
	"Over-Explaining / Too Technical",
	"Defensive Language",
	"Generic Response",
	"No Brand Personality",
	"Ignoring Key Feedback",
	"Punctuation / Grammar Issues",
	"No Ending Warmth / Close-off",
}

// ValidRootCause reports whether cause is a member of the closed root-cause set.
func ValidRootCause(cause string) bool {
	return contains(RootCauses, cause)
}

// FilterTags returns the members of tags present in the allowed set,
// preserving order. Unknown tags are dropped at the adapter boundary so the
// core never sees a value outside its closed enumerations.
func FilterTags(tags, allowed []string) []string {
	if len(tags) == 0 {
		return nil
	}
	kept := make([]string, 0, len(tags))
	for _, tag := range tags {
		if contains(allowed, tag) {
			kept = append(kept, tag)
		}
	}
	return kept
}

func contains(set []string, value string) bool {
	for _, member := range set {
		if member == value {
			return true
		}
	}
	return false
}
