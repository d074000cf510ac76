package phpserialize

// PHP serialize() type tags. Every value starts with one of these bytes;
// all of them except `N` are followed by a colon.
const (
	tagNull   byte = 'N' // N;
	tagBool   byte = 'b' // b:0; or b:1;
	tagInt    byte = 'i' // i:<signed decimal>;
	tagFloat  byte = 'd' // d:<signed decimal>[.<digits>];
	tagString byte = 's' // s:<byte length>:"<raw bytes>";
	tagArray  byte = 'a' // a:<count>:{<key><value>...}
	tagObject byte = 'O' // O:... object payloads are not supported
)

// arrayEnd closes every array body.
const arrayEnd byte = '}'
