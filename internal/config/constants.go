package config

// ConfigFileNames are all recognized configuration file names, in lookup order.
var ConfigFileNames = []string{"meditate.yaml", "meditate.yml"}

// SchemaFileExtensions are the recognized type-model schema extensions.
var SchemaFileExtensions = []string{".yaml", ".yml"}

// IsTestMode indicates if the program is running under tests.
// Error messages avoid terminal coloring when set.
var IsTestMode = false

// Distance costs. Odd values stay free for conversions mixed with
// inheritance steps, so every inheritance edge costs two.
//
// BoxingPenalty dominates reference conversions only while
// params * 2 * depth < 1000: twenty parameters stay below it for supplied
// types fewer than 25 inheritance edges below the required type.
const (
	InheritanceEdgeCost  = 2
	VarargsSpreadPenalty = 1
	BoxingPenalty        = 1000
	UnboxingPenalty      = 10000
)

// Incompatible is the distance of a supplied type that cannot satisfy a slot.
const Incompatible = -1

// Built-in type names
const (
	ObjectTypeName       = "Object"
	StringTypeName       = "String"
	NumberTypeName       = "Number"
	SerializableTypeName = "Serializable"
	ComparableTypeName   = "Comparable"
	CharSequenceTypeName = "CharSequence"
	CloneableTypeName    = "Cloneable"
	NullTypeName         = "null"
)

// Boxed type names
const (
	BooleanBoxName   = "Boolean"
	ByteBoxName      = "Byte"
	ShortBoxName     = "Short"
	CharacterBoxName = "Character"
	IntegerBoxName   = "Integer"
	LongBoxName      = "Long"
	FloatBoxName     = "Float"
	DoubleBoxName    = "Double"
)

// ConstructorName is the member name reported for constructors.
const ConstructorName = "<init>"
