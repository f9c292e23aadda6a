package persistence

// MaxLevel is the highest level a character can reach.
const MaxLevel = 20

// levelTable holds the cumulative XP required to reach each level.
// Index 0 = level 1 (0 XP), index 1 = level 2 (300 XP), etc.
var levelTable = [MaxLevel]int{
	0,      // Level 1
	300,    // Level 2
	900,    // Level 3
	2700,   // Level 4
	6500,   // Level 5
	14000,  // Level 6
	23000,  // Level 7
	34000,  // Level 8
	48000,  // Level 9
	64000,  // Level 10
	85000,  // Level 11
	100000, // Level 12
	120000, // Level 13
	140000, // Level 14
	165000, // Level 15
	195000, // Level 16
	225000, // Level 17
	265000, // Level 18
	305000, // Level 19
	355000, // Level 20
}

// ExpForLevel returns the cumulative XP required to reach the given level.
func ExpForLevel(level int) int {
	if level < 1 {
		return 0
	}
	if level > MaxLevel {
		return levelTable[MaxLevel-1]
	}
	return levelTable[level-1]
}

// LevelForExp returns the level reached with the given cumulative XP.
func LevelForExp(experience int) int {
	level := 1
	for level < MaxLevel && experience >= levelTable[level] {
		level++
	}
	return level
}

// BaseExpForLevel returns the XP reward for killing an enemy of the given
// level when its template does not set one.
func BaseExpForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return 50 + level*level*10
}

// applyExperience adds amount to the character and recomputes its level.
// Levels never decrease.
func applyExperience(c *Character, amount int) {
	if amount <= 0 {
		return
	}
	c.Experience += amount
	if lvl := LevelForExp(c.Experience); lvl > c.Level {
		c.Level = lvl
	}
}
